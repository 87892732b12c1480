// Package types provides shared type definitions for the semstore MCP server.
//
// These types travel between the transports (MCP tools, REST), the ingestion
// pipeline, and the vector store.
//
// # Documents
//
// A Document is the ingestion unit. It is never persisted as such: each of its
// chunks becomes one record whose metadata is a copy of the document metadata
// with the document name and description injected:
//
//	doc := types.Document{
//	    Name:        "handbook",
//	    Description: types.StringPtr("employee handbook"),
//	    Chunks:      []string{"chapter one ...", "chapter two ..."},
//	    Metadata:    types.Metadata{"lang": "en"},
//	}
//
// # Metadata
//
// Metadata is an owned JSON object. Injection (Metadata.Inject) happens before
// storage and extraction (Metadata.Extract) after retrieval, never both on the
// same value:
//
//	meta := doc.Metadata.Clone()
//	meta.Inject(doc.Name, doc.Description)
//
//	name, desc := stored.Extract() // removes "name" and "description"
//
// # Responses
//
// Every successful operation is wrapped in the Response envelope:
//
//	{"code": 0, "message": "success", "data": ...}
package types
