// Package mcp implements the Model Context Protocol (MCP) server.
//
// The server exposes three tools:
//   - add_documents: store documents split into chunks
//   - search: semantic search over one table
//   - list_tables: names of every table
//
// # Transports
//
// ServeStdio speaks JSON-RPC 2.0 over stdin/stdout. ServeHTTP serves the
// streamable HTTP transport on a TCP address. Logs always go to stderr.
//
// # Tool: add_documents
//
//	Request:
//	{
//	  "name": "add_documents",
//	  "arguments": {
//	    "table_name": "notes",
//	    "documents": [
//	      {
//	        "name": "readme",
//	        "description": "project readme",
//	        "chunks": ["first paragraph", "second paragraph"],
//	        "metadata": {"source": "git"}
//	      }
//	    ]
//	  }
//	}
//
//	Response:
//	{
//	  "code": 0,
//	  "message": "success",
//	  "data": "Successfully added 1 documents (2 chunks) to table 'notes'"
//	}
//
// # Tool: search
//
//	Request:
//	{
//	  "name": "search",
//	  "arguments": {"table_name": "notes", "query": "second", "limit": 1}
//	}
//
//	Response:
//	{
//	  "code": 0,
//	  "message": "success",
//	  "data": [
//	    {
//	      "id": "6f1c...",
//	      "name": "readme",
//	      "content": "second paragraph",
//	      "score": 0.93,
//	      "metadata": {"source": "git"},
//	      "description": "project readme"
//	    }
//	  ]
//	}
//
// # Tool: list_tables
//
//	Response:
//	{"code": 0, "message": "success", "data": ["knowledge_base", "notes"]}
//
// # Error Handling
//
// Invalid parameters are returned as protocol errors with code -32602.
// Failures of the operation itself (embedding, storage, unknown table) are
// returned as a tool result with isError set and the error message as text.
package mcp
