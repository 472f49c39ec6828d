package handler

import (
	"net/http"
	"sync"

	"github.com/invopop/jsonschema"

	"fieldforce/internal/agent/service"
	"fieldforce/pkg/platform/httputil"
)

var (
	schemaOnce sync.Once
	formSchema *jsonschema.Schema
)

// CaptureFormSchema describes the create/update agent body.
func CaptureFormSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			ExpandedStruct:             true,
		}
		formSchema = r.Reflect(&service.AgentCommand{})
		formSchema.Title = "Agent capture form"
	})
	return formSchema
}

func (h *Handler) HandleSchema(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, CaptureFormSchema())
}
