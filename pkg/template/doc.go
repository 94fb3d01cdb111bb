// Package template renders mb config files before they are parsed as JSON.
//
// Config files may splice other files into themselves with a helper tag:
//
//	{
//	  "is": {
//	    "body": "<%- stringify(filename, 'responses/orders.json') %>"
//	  }
//	}
//
// The referenced path is resolved against the directory of the file that
// contains the tag, rendered with the same helpers (includes may nest to any
// depth), JSON-escaped as a string literal and spliced in without the
// surrounding quote characters. The "filename" argument is optional and is
// accepted for compatibility with existing config files.
//
// Supported tags:
//   - <%- helper('path') %> - include and escape another file
//   - <%# comment %>        - removed from the output
//
// A -%> closer swallows the newline after the tag, and _%> swallows all
// whitespace after it.
//
// Any other <% ... %> tag is an error. Helper names are supplied by the
// caller; mb registers "stringify" and its legacy spelling "inject".
package template
