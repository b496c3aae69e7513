package types

// RequestResult contains the outcome of one executed operation. A request
// that never produced a response carries only Error (and Warnings). A
// response whose body is not JSON keeps Status and Body and sets Error.
type RequestResult struct {
	Method       string            `json:"method,omitempty"`
	URL          string            `json:"url,omitempty"`
	Status       int               `json:"status"`
	StatusText   string            `json:"statusText"`
	Headers      map[string]string `json:"headers"`
	Body         string            `json:"body"`
	Data         any               `json:"data,omitempty"` // decoded JSON body, nil when empty or not JSON
	Duration     int64             `json:"duration"`       // milliseconds
	RequestSize  int               `json:"requestSize"`    // bytes
	ResponseSize int               `json:"responseSize"`   // bytes
	Warnings     []string          `json:"warnings,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// Failed reports whether the request failed or its body could not be decoded
func (r *RequestResult) Failed() bool {
	return r == nil || r.Error != ""
}

// HistoryEntry represents a saved request/response pair
type HistoryEntry struct {
	ID                 int64             `json:"id,omitempty"`
	Timestamp          string            `json:"timestamp"`
	DocumentTitle      string            `json:"documentTitle,omitempty"`
	Path               string            `json:"path"`
	Method             string            `json:"method"`
	URL                string            `json:"url"`
	Headers            map[string]string `json:"headers"`
	Body               string            `json:"body,omitempty"`
	ResponseStatus     int               `json:"responseStatus"`
	ResponseStatusText string            `json:"responseStatusText"`
	ResponseHeaders    map[string]string `json:"responseHeaders"`
	ResponseBody       string            `json:"responseBody"`
	Duration           int64             `json:"duration"`
	RequestSize        int               `json:"requestSize,omitempty"`
	ResponseSize       int               `json:"responseSize,omitempty"`
	Error              string            `json:"error,omitempty"`
}

// ServerStatus is the reachability of one declared server
type ServerStatus string

const (
	StatusChecking    ServerStatus = "checking"
	StatusLive        ServerStatus = "live"
	StatusUnreachable ServerStatus = "unreachable"
)
