package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/julianstephens/fastwell/internal/errors"
)

// ErrorBody is the error schema shared by the service and fastwell serve.
// Message may be a single string or a list of strings.
type ErrorBody struct {
	Message Messages      `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// Messages accepts "text" or ["a", "b"]
type Messages []string

func (m *Messages) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			*m = Messages{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*m = many
	return nil
}

func (m Messages) MarshalJSON() ([]byte, error) {
	if len(m) == 1 {
		return json.Marshal(m[0])
	}
	return json.Marshal([]string(m))
}

// Text picks the most specific human-readable message in the body
func (b ErrorBody) Text() string {
	if len(b.Message) > 0 {
		return strings.Join(b.Message, "; ")
	}
	if len(b.Details) > 0 {
		parts := make([]string, 0, len(b.Details))
		for _, d := range b.Details {
			if d.Message != "" {
				parts = append(parts, d.Message)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	return b.Error
}

func decodeError(resp *http.Response) error {
	re := &apperrors.RemoteError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return re
	}

	var body ErrorBody
	if err := json.Unmarshal(data, &body); err != nil {
		// Not our schema, surface the raw text
		re.Message = strings.TrimSpace(string(data))
		return re
	}
	re.Message = body.Text()
	return re
}
