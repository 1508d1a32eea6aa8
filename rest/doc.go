/*
	The task API has a small set of central types that are useful to understand when
	adding new endpoints or changing its behavior.

	Model

	Models are structs that represent the object returned by the API. They know how to
	build themselves from the stored task (BuildFromService) and the validation of
	request bodies lives next to them.

	Connector

	TaskConnector sits between the routes and the storage layer. It resolves textual
	ids into stored tasks and performs the write operations, reporting failures that
	the client can act on as gimlet.ErrorResponse values built with ClientError and
	NotFoundError.

	Route

	Routes implement gimlet.RouteHandler. Parse pulls the path variables and body out
	of the request, Run composes connector calls. Every error that a route produces
	passes through a single translator that writes the {"errormsg": ...} body; errors
	that are not client errors are reported as internal errors.
*/
package rest
