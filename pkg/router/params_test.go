package router

import (
	"reflect"
	"strings"
	"testing"
)

func TestBind(t *testing.T) {
	type showParams struct {
		ID    int      `param:"id"`
		Slug  string   `param:"slug"`
		Rest  []string `param:"splat"`
		Page  uint     `param:"page"`
		Ratio float64  `param:"ratio"`
		Draft bool     `param:"draft"`
		Skip  string
	}

	var p showParams
	err := Bind(map[string]string{
		"id":    "42",
		"slug":  "hello-world",
		"splat": "a/b/c",
		"page":  "3",
		"ratio": "0.5",
		"draft": "true",
	}, &p)
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	if p.ID != 42 || p.Slug != "hello-world" || p.Page != 3 || p.Ratio != 0.5 || !p.Draft {
		t.Errorf("bound values = %+v", p)
	}
	if !reflect.DeepEqual(p.Rest, []string{"a", "b", "c"}) {
		t.Errorf("Rest = %v, want [a b c]", p.Rest)
	}
	if p.Skip != "" {
		t.Errorf("untagged field was set: %q", p.Skip)
	}
}

func TestBindMissingParamIgnored(t *testing.T) {
	type params struct {
		ID int `param:"id"`
	}
	var p params
	if err := Bind(map[string]string{}, &p); err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if p.ID != 0 {
		t.Errorf("ID = %d, want zero value", p.ID)
	}
}

func TestBindErrors(t *testing.T) {
	type params struct {
		ID int `param:"id"`
	}

	var p params
	err := Bind(map[string]string{"id": "abc"}, &p)
	if err == nil || !strings.Contains(err.Error(), "id") {
		t.Errorf("Bind invalid int error = %v", err)
	}

	if err := Bind(nil, p); err == nil {
		t.Error("Bind accepted a non-pointer target")
	}

	s := "str"
	if err := Bind(nil, &s); err == nil {
		t.Error("Bind accepted a pointer to non-struct")
	}

	if err := Bind(map[string]string{"id": "1"}, nil); err != nil {
		t.Errorf("Bind(nil target) error = %v, want nil", err)
	}
}

func TestBindRejectsOutOfRange(t *testing.T) {
	type params struct {
		Small int8  `param:"n"`
		Page  uint8 `param:"page"`
	}

	var p params
	if err := Bind(map[string]string{"n": "300"}, &p); err == nil {
		t.Error("Bind accepted 300 into int8")
	}
	if p.Small != 0 {
		t.Errorf("Small = %d after failed bind, want 0", p.Small)
	}

	if err := Bind(map[string]string{"page": "256"}, &p); err == nil {
		t.Error("Bind accepted 256 into uint8")
	}

	if err := Bind(map[string]string{"n": "127", "page": "255"}, &p); err != nil {
		t.Fatalf("Bind in-range values: %v", err)
	}
	if p.Small != 127 || p.Page != 255 {
		t.Errorf("bound values = %+v", p)
	}
}
