package editor

import (
	"errors"
	"reflect"
	"testing"

	"github.com/studiowebux/oasedit/internal/document"
)

func strPtr(s string) *string { return &s }

func TestUpdateInfo(t *testing.T) {
	s := newTestStore(t)
	e := NewInfoEditor(s)

	err := e.UpdateInfo(InfoPatch{
		Description:  strPtr("Pet store"),
		ContactEmail: strPtr("ops@example.com"),
		LicenseName:  strPtr("MIT"),
	})
	if err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}

	info, _ := e.Info()
	if info.Title != "Pets" {
		t.Errorf("Expected title to be kept, got %q", info.Title)
	}
	if info.Description != "Pet store" {
		t.Errorf("Expected description 'Pet store', got %q", info.Description)
	}
	if info.Contact == nil || info.Contact.Email != "ops@example.com" {
		t.Errorf("Expected contact email, got %+v", info.Contact)
	}
	if info.License == nil || info.License.Name != "MIT" {
		t.Errorf("Expected MIT license, got %+v", info.License)
	}

	// clearing every contact field drops the object
	if err := e.UpdateInfo(InfoPatch{ContactEmail: strPtr("")}); err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}
	info, _ = e.Info()
	if info.Contact != nil {
		t.Errorf("Expected contact to be removed, got %+v", info.Contact)
	}

	if err := e.UpdateInfo(InfoPatch{Title: strPtr("")}); err == nil {
		t.Error("Expected error when clearing the title")
	}
	info, _ = e.Info()
	if info.Title != "Pets" {
		t.Errorf("Expected rejected update to keep title, got %q", info.Title)
	}
}

func TestServerEditor(t *testing.T) {
	s := newTestStore(t)
	e := NewServerEditor(s)

	if err := e.Add(document.Server{URL: " http://localhost:8080 ", Description: "local"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := e.Add(document.Server{URL: "http://localhost:8080"}); !errors.Is(err, ErrDuplicateServer) {
		t.Errorf("Expected ErrDuplicateServer, got %v", err)
	}
	if err := e.Add(document.Server{URL: "  "}); !errors.Is(err, ErrEmptyField) {
		t.Errorf("Expected ErrEmptyField, got %v", err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"https://api.example.com/v1", "http://localhost:8080"}},
		{"LOCAL", []string{"http://localhost:8080"}},
		{"production", []string{"https://api.example.com/v1"}},
		{"staging", nil},
	}
	for _, tt := range tests {
		t.Run("query="+tt.query, func(t *testing.T) {
			servers, err := e.List(tt.query)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			var got []string
			for _, srv := range servers {
				got = append(got, srv.URL)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	if err := e.Update("http://localhost:8080", document.Server{URL: "https://api.example.com/v1"}); !errors.Is(err, ErrDuplicateServer) {
		t.Errorf("Expected ErrDuplicateServer on rename collision, got %v", err)
	}
	if err := e.Update("http://localhost:8080", document.Server{URL: "http://{host}:8080"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := e.SetVariable("http://{host}:8080", "host", document.ServerVariable{Default: "localhost"}); err != nil {
		t.Fatalf("SetVariable failed: %v", err)
	}
	doc := s.Get()
	if got := doc.Servers[1].Variables["host"].Default; got != "localhost" {
		t.Errorf("Expected variable default 'localhost', got %q", got)
	}
	if err := e.RemoveVariable("http://{host}:8080", "port"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing variable, got %v", err)
	}
	if err := e.RemoveVariable("http://{host}:8080", "host"); err != nil {
		t.Fatalf("RemoveVariable failed: %v", err)
	}
	if s.Get().Servers[1].Variables != nil {
		t.Error("Expected empty variables map to be dropped")
	}

	if err := e.Remove("http://{host}:8080"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := e.Remove("http://{host}:8080"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second remove, got %v", err)
	}
	if n := len(s.Get().Servers); n != 1 {
		t.Errorf("Expected 1 server, got %d", n)
	}
}

func TestPathList(t *testing.T) {
	s := newTestStore(t)
	e := NewPathEditor(s)

	tests := []struct {
		name   string
		query  string
		method string
		want   []string
	}{
		{"all", "", "", []string{"/pets", "/users"}},
		{"path match", "user", "", []string{"/users"}},
		{"summary match", "create", "", []string{"/pets"}},
		{"method filter", "", "post", []string{"/pets"}},
		{"method and query", "users", "post", nil},
		{"no match", "orders", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := e.List(tt.query, tt.method)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			var got []string
			for _, entry := range entries {
				got = append(got, entry.Path)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	endpoints, _ := e.Endpoints()
	if len(endpoints) != 3 {
		t.Fatalf("Expected 3 endpoints, got %d", len(endpoints))
	}
	if endpoints[0].Method != "get" || endpoints[1].Method != "post" {
		t.Errorf("Expected get before post, got %s, %s", endpoints[0].Method, endpoints[1].Method)
	}
}

func TestAddOperation(t *testing.T) {
	s := newTestStore(t)
	e := NewPathEditor(s)

	if err := e.AddOperation("orders", "get", ""); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath, got %v", err)
	}
	if err := e.AddOperation("/orders", "fetch", ""); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("Expected ErrInvalidMethod, got %v", err)
	}

	if err := e.AddOperation("/orders", "get", "List orders"); err != nil {
		t.Fatalf("AddOperation failed: %v", err)
	}
	op, err := e.Operation("/orders", "get")
	if err != nil {
		t.Fatalf("Operation failed: %v", err)
	}
	if op.Summary != "List orders" {
		t.Errorf("Expected summary 'List orders', got %q", op.Summary)
	}
	resp, ok := op.Responses["200"]
	if !ok || resp.Value == nil {
		t.Fatal("Expected a seeded 200 response")
	}
	if resp.Value.Description != DefaultResponseDescription {
		t.Errorf("Expected %q, got %q", DefaultResponseDescription, resp.Value.Description)
	}
}

func TestRemoveOperation(t *testing.T) {
	s := newTestStore(t)
	e := NewPathEditor(s)

	t.Run("one of two keeps the path", func(t *testing.T) {
		if err := e.RemoveOperation("/pets", "post"); err != nil {
			t.Fatalf("RemoveOperation failed: %v", err)
		}
		item := s.Get().Paths["/pets"]
		if item == nil {
			t.Fatal("Expected /pets to remain")
		}
		if got := item.Operations(); !reflect.DeepEqual(got, []string{"get"}) {
			t.Errorf("Expected [get], got %v", got)
		}
	})

	t.Run("only operation removes the path", func(t *testing.T) {
		if err := e.RemoveOperation("/users", "GET"); err != nil {
			t.Fatalf("RemoveOperation failed: %v", err)
		}
		if _, ok := s.Get().Paths["/users"]; ok {
			t.Error("Expected /users to be removed")
		}
	})

	t.Run("missing method", func(t *testing.T) {
		if err := e.RemoveOperation("/pets", "delete"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestUpdateOperationJSON(t *testing.T) {
	s := newTestStore(t)
	e := NewPathEditor(s)

	text := `{
  // lenient input
  "summary": "All pets",
  "responses": {"200": {"description": "ok"},},
}`
	if err := e.UpdateOperationJSON("/pets", "get", []byte(text)); err != nil {
		t.Fatalf("UpdateOperationJSON failed: %v", err)
	}
	op, _ := e.Operation("/pets", "get")
	if op.Summary != "All pets" {
		t.Errorf("Expected summary 'All pets', got %q", op.Summary)
	}

	before := s.Get()
	if err := e.UpdateOperationJSON("/pets", "get", []byte(`{"summary":`)); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("Expected ErrInvalidJSON, got %v", err)
	}
	if s.Get() != before {
		t.Error("Expected document to be unchanged after invalid JSON")
	}
}

func TestComponentList(t *testing.T) {
	s := newTestStore(t)
	e := NewComponentEditor(s)

	groups, err := e.List(document.KindSchemas, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	want := []string{RootGroup, "billing", "users"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected groups %v, got %v", want, names)
	}
	if users := groups[2]; len(users.Items) != 2 || users.Items[0].Name != "Role" {
		t.Errorf("Expected users group [Role User], got %+v", users.Items)
	}

	// description matches too, and emptied groups disappear
	groups, _ = e.List(document.KindSchemas, "account")
	if len(groups) != 1 || groups[0].Name != "users" || groups[0].Items[0].Key != "users/User" {
		t.Errorf("Expected only users/User, got %+v", groups)
	}

	groups, _ = e.List(document.KindSchemas, "nothing")
	if len(groups) != 0 {
		t.Errorf("Expected no groups, got %d", len(groups))
	}
}

func TestComponentEdit(t *testing.T) {
	s := newTestStore(t)
	e := NewComponentEditor(s)

	if err := e.Add(document.KindSchemas, "billing", "Payment", []byte(`{"type": "object", /* card or bank */ }`)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := e.Get(document.KindSchemas, "billing/Payment"); err != nil {
		t.Errorf("Expected billing/Payment to exist, got %v", err)
	}
	if err := e.Add(document.KindSchemas, RootGroup, "Pet", []byte(`{}`)); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}

	before := s.Get()
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed", `{"type": `},
		{"not an object", `["a", "b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Update(document.KindSchemas, "Pet", []byte(tt.raw))
			if !errors.Is(err, ErrInvalidJSON) {
				t.Errorf("Expected ErrInvalidJSON, got %v", err)
			}
			if s.Get() != before {
				t.Error("Expected document to be unchanged")
			}
		})
	}

	if err := e.Remove(document.KindSchemas, "users/Role"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := e.Get(document.KindSchemas, "users/Role"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after remove, got %v", err)
	}
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key, group, name string
	}{
		{"Pet", RootGroup, "Pet"},
		{"users/User", "users", "User"},
		{"a/b/c", "a", "b/c"},
	}
	for _, tt := range tests {
		group, name := SplitKey(tt.key)
		if group != tt.group || name != tt.name {
			t.Errorf("SplitKey(%q): expected (%q, %q), got (%q, %q)", tt.key, tt.group, tt.name, group, name)
		}
		if got := JoinKey(group, name); got != tt.key {
			t.Errorf("JoinKey: expected %q, got %q", tt.key, got)
		}
	}
}

func TestTagRename(t *testing.T) {
	s := newTestStore(t)
	e := NewTagEditor(s)

	if err := e.Add(document.Tag{Name: "pets"}); !errors.Is(err, ErrDuplicateTag) {
		t.Errorf("Expected ErrDuplicateTag, got %v", err)
	}
	if err := e.Add(document.Tag{Name: "users", Description: "Accounts"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := e.Update("pets", document.Tag{Name: "users"}); !errors.Is(err, ErrDuplicateTag) {
		t.Errorf("Expected ErrDuplicateTag on rename collision, got %v", err)
	}

	if err := e.Update("pets", document.Tag{Name: "animals", Description: "Animals"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	doc := s.Get()
	for _, m := range []string{"get", "post"} {
		op := doc.Paths["/pets"].Operation(m)
		if !reflect.DeepEqual(op.Tags, []string{"animals"}) {
			t.Errorf("%s /pets: expected tags [animals], got %v", m, op.Tags)
		}
	}

	tags, _ := e.List("account")
	if len(tags) != 1 || tags[0].Name != "users" {
		t.Errorf("Expected [users], got %+v", tags)
	}

	if err := e.Remove("animals"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := e.Remove("animals"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSecurityTemplates(t *testing.T) {
	tests := []struct {
		typ    string
		check  func(document.SecurityScheme) bool
		wantOK bool
	}{
		{document.SchemeHTTP, func(s document.SecurityScheme) bool { return s.Scheme == "bearer" }, true},
		{document.SchemeAPIKey, func(s document.SecurityScheme) bool { return s.In == "header" }, true},
		{document.SchemeOAuth2, func(s document.SecurityScheme) bool {
			return s.Flows != nil && s.Flows.Implicit != nil && s.Flows.AuthorizationCode != nil
		}, true},
		{document.SchemeOpenIDConnect, func(s document.SecurityScheme) bool { return s.Type == document.SchemeOpenIDConnect }, true},
		{"mutualTLS", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			scheme, err := Template(tt.typ)
			if !tt.wantOK {
				if !errors.Is(err, document.ErrInvalidScheme) {
					t.Errorf("Expected ErrInvalidScheme, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Template failed: %v", err)
			}
			if !tt.check(scheme) {
				t.Errorf("Unexpected template %+v", scheme)
			}
		})
	}
}

func TestSecurityEditor(t *testing.T) {
	s := newTestStore(t)
	e := NewSecurityEditor(s)

	tmpl, _ := e.Template(document.SchemeAPIKey)
	tmpl.Name = "X-API-Key"
	if err := e.Add("apiKey", tmpl); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := e.Add("apiKey", tmpl); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}
	if err := e.Add("bad", document.SecurityScheme{Type: "magic"}); !errors.Is(err, document.ErrInvalidScheme) {
		t.Errorf("Expected ErrInvalidScheme, got %v", err)
	}

	list, _ := e.List("")
	if len(list) != 2 || list[0].Name != "apiKey" || list[1].Name != "bearerAuth" {
		t.Errorf("Expected [apiKey bearerAuth], got %+v", list)
	}
	list, _ = e.List("jwt")
	if len(list) != 1 || list[0].Name != "bearerAuth" {
		t.Errorf("Expected [bearerAuth], got %+v", list)
	}

	got, err := e.Get("apiKey")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "X-API-Key" || got.In != "header" {
		t.Errorf("Unexpected scheme %+v", got)
	}

	reqs := []document.SecurityRequirement{{"bearerAuth": {}}, {"apiKey": {}}}
	if err := e.SetRequirements(reqs); err != nil {
		t.Fatalf("SetRequirements failed: %v", err)
	}
	reqs[0]["bearerAuth"] = []string{"mutated"}
	stored, _ := e.Requirements()
	if len(stored) != 2 || len(stored[0]["bearerAuth"]) != 0 {
		t.Errorf("Expected stored requirements to be independent, got %+v", stored)
	}

	if err := e.SetRequirements([]document.SecurityRequirement{{"oauth": nil}}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown scheme, got %v", err)
	}

	if err := e.Remove("apiKey"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := e.Get("apiKey"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after remove, got %v", err)
	}
}
