// Package api handles incoming HTTP requests for the study request,
// material, dashboard and user surfaces: routing, request validation and
// response formatting. It translates service-layer errors into stable HTTP
// status codes and keeps internal error detail out of response bodies.
package api
