// Package mock provides a capability provider configured from YAML, used for
// local development, demos and tests.
//
// A provider file declares tools, resources and prompts:
//
//	name: research
//	tools:
//	  - name: web_search
//	    description: "Search the web"
//	    input_schema:
//	      type: object
//	      properties:
//	        query:
//	          type: string
//	        limit:
//	          type: integer
//	          default: 5
//	      required: [query]
//	    responses:
//	      - condition:
//	          query: "outage"
//	        error: "search backend unavailable"
//	      - response:
//	          results:
//	            - "Top result for {{ .query }}"
//	        delay: "200ms"
//	resources:
//	  - uri: "docs://guide"
//	    name: guide
//	    text: "Research guide"
//	prompts:
//	  - name: summarize
//	    arguments:
//	      - name: topic
//	        required: true
//	    messages:
//	      - text: "Summarize what is known about {{ .topic }}"
//
// Responses, error messages and prompt messages are Go templates with the
// sprig function library. The first response whose condition matches the
// call arguments wins; if none matches the first response is used.
//
// Reload swaps the definitions on the running server, which notifies
// connected clients with list_changed. Watcher triggers Reload on file
// changes.
package mock
