package dispatch

import (
	"encoding/xml"
	"io"
	"net/http"

	"github.com/fireboy1919/s3rver/internal/api"
)

// postBulkDelete implements POST /<bucket>?delete: deletes every
// listed key, reporting each as Deleted (even if it never existed)
// per §4.2's documented bulk-delete contract. A key whose removal
// fails is listed under Error instead.
func (h *Handler) postBulkDelete(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, resource string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteError(w, api.CodeMalformedXML, "Could not read request body", resource, ctx.requestID)
		return
	}
	var req api.DeleteRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		api.WriteError(w, api.CodeMalformedXML, "The delete request body could not be parsed", resource, ctx.requestID)
		return
	}

	keys := make([]string, len(req.Objects))
	for i, o := range req.Objects {
		keys[i] = o.Key
	}
	results, err := h.store.DeleteObjects(bucket, keys)
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}

	resp := api.DeleteResult{Xmlns: xmlns}
	for _, res := range results {
		if res.Deleted {
			resp.Deleted = append(resp.Deleted, api.DeletedObject{Key: res.Key})
			continue
		}
		code, message := mapStoreError(res.Error)
		resp.Errors = append(resp.Errors, api.DeleteError{Key: res.Key, Code: code, Message: message})
	}
	api.WriteXML(w, http.StatusOK, resp)
}
