package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/mmcdole/instalike/internal/domain"
)

// errorBody is the API's error envelope. Validation errors come either as
// a field map or as a list of {field, message} entries.
type errorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// decodeError maps a non-2xx response onto the error taxonomy
func decodeError(status int, payload []byte) *domain.APIError {
	var body errorBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return domain.NewAPIError(status, http.StatusText(status), nil)
	}

	message := body.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return domain.NewAPIError(status, message, decodeFields(body.Errors))
}

func decodeFields(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var multi map[string][]string
	if err := json.Unmarshal(raw, &multi); err == nil && len(multi) > 0 {
		return multi
	}

	var single map[string]string
	if err := json.Unmarshal(raw, &single); err == nil && len(single) > 0 {
		fields := make(map[string][]string, len(single))
		for k, v := range single {
			fields[k] = []string{v}
		}
		return fields
	}

	var list []fieldError
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		fields := make(map[string][]string)
		for _, fe := range list {
			fields[fe.Field] = append(fields[fe.Field], fe.Message)
		}
		return fields
	}
	return nil
}
