// Package api exposes the semantic store over a JSON REST interface.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/v1/tables
//	POST /api/v1/documents
//	POST /api/v1/search
//
// Responses use the same {code, message, data} envelope as the MCP tools.
// Invalid input maps to 400, unknown tables to 404 and everything else to 500.
package api
