package runner

import (
	"sync"

	"github.com/studiowebux/oasedit/internal/types"
)

// Result is the captured outcome of one send
type Result = types.RequestResult

// Inputs holds what the user typed for one operation
type Inputs struct {
	Params map[string]string
	Server string
	Body   any // nil sends no body
}

func (in Inputs) clone() Inputs {
	out := Inputs{Server: in.Server, Body: in.Body}
	if in.Params != nil {
		out.Params = make(map[string]string, len(in.Params))
		for k, v := range in.Params {
			out.Params[k] = v
		}
	}
	return out
}

// Key identifies an operation in the working state
func Key(path, method string) string {
	return path + "-" + method
}

// WorkingState is the in-memory, per-operation scratch space of the runner
type WorkingState struct {
	mu          sync.RWMutex
	inputs      map[string]Inputs
	results     map[string]*Result
	busy        map[string]bool
	credentials map[string]string
}

func NewWorkingState() *WorkingState {
	return &WorkingState{
		inputs:      make(map[string]Inputs),
		results:     make(map[string]*Result),
		busy:        make(map[string]bool),
		credentials: make(map[string]string),
	}
}

// Inputs returns a copy of the values stored for key
func (s *WorkingState) Inputs(key string) Inputs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputs[key].clone()
}

func (s *WorkingState) SetInputs(key string, in Inputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs[key] = in.clone()
}

// SetParam stores one parameter value. An empty value clears it.
func (s *WorkingState) SetParam(key, name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.inputs[key]
	if in.Params == nil {
		in.Params = make(map[string]string)
	}
	if value == "" {
		delete(in.Params, name)
	} else {
		in.Params[name] = value
	}
	s.inputs[key] = in
}

func (s *WorkingState) SetServer(key, server string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.inputs[key]
	in.Server = server
	s.inputs[key] = in
}

func (s *WorkingState) SetBody(key string, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.inputs[key]
	in.Body = body
	s.inputs[key] = in
}

// Result returns the last result for key
func (s *WorkingState) Result(key string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[key]
	return r, ok
}

func (s *WorkingState) setResult(key string, r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[key] = r
}

// Busy reports whether a send for key is in flight
func (s *WorkingState) Busy(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy[key]
}

func (s *WorkingState) setBusy(key string, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if busy {
		s.busy[key] = true
	} else {
		delete(s.busy, key)
	}
}

// SetCredential captures the secret for a security scheme. For http basic
// schemes the value is "user:password". An empty value forgets it.
func (s *WorkingState) SetCredential(scheme, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.credentials, scheme)
		return
	}
	s.credentials[scheme] = value
}

func (s *WorkingState) Credential(scheme string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.credentials[scheme]
	return v, ok
}

func (s *WorkingState) credentialsSnapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.credentials))
	for k, v := range s.credentials {
		out[k] = v
	}
	return out
}

// Reset forgets inputs and results; credentials are kept
func (s *WorkingState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = make(map[string]Inputs)
	s.results = make(map[string]*Result)
}
