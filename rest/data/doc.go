/*
Package data holds the connectors that sit between the REST routes and
the task model.

Connectors resolve ids sent by clients into stored documents and perform
the writes a route asks for. They return gimlet.ErrorResponse values for
conditions the client caused (a missing task, a duplicate id) and wrapped
errors for everything else, leaving the routes to decide how to respond.

As much database specific information as possible should be kept out of
connectors. Queries and updates belong in the model package.
*/
package data
