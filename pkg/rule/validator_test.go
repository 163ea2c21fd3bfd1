package rule_test

import (
	"errors"
	"maps"
	"testing"

	"github.com/yeisme/filedock/pkg/rule"
)

type uploadParams struct {
	Category string `form:"category" rule:"omitempty,category"`
	Prefix   string `form:"prefix"   rule:"omitempty,prefix"`
}

type serverParams struct {
	BaseURL string `mapstructure:"base_url"      rule:"required,url"`
	Segment string `mapstructure:"route_segment" rule:"required,route_segment"`
	Port    int    `mapstructure:"port"          rule:"min=1,max=65535"`
}

// TestEngine 测试 Engine 返回同一个非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Fatal("Engine() returned nil")
	}

	if engine != rule.Engine() {
		t.Error("Engine() returned a different instance")
	}
}

// TestCustomRules 测试 prefix 与 category 规则.
func TestCustomRules(t *testing.T) {
	cases := []struct {
		name string
		in   uploadParams
		ok   bool
	}{
		{"empty", uploadParams{}, true},
		{"valid", uploadParams{Category: "video", Prefix: "course_cover-1"}, true},
		{"unknown category", uploadParams{Category: "spreadsheet"}, false},
		{"path traversal", uploadParams{Prefix: "../etc"}, false},
		{"space", uploadParams{Prefix: "my file"}, false},
		{"too long", uploadParams{Prefix: string(make([]byte, 65))}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := rule.ValidateStruct(tc.in)
			if tc.ok && err != nil {
				t.Errorf("expected no error, got %v", err)
			}

			if !tc.ok && err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// TestRouteSegment 测试路由段规则，包括与内置路由冲突的段.
func TestRouteSegment(t *testing.T) {
	cases := map[string]bool{
		"files":    true,
		"uploads":  true,
		"v1.media": true,
		"API":      true,
		"a/b":      false,
		"a?b":      false,
		"":         false,
		"api":      false,
		"swagger":  false,
	}

	for seg, ok := range cases {
		err := rule.ValidateVar(seg, "route_segment")
		if ok && err != nil {
			t.Errorf("segment %q: expected valid, got %v", seg, err)
		}

		if !ok && err == nil {
			t.Errorf("segment %q: expected error, got nil", seg)
		}
	}
}

// TestErrors_UsesTagNames 错误键使用 mapstructure 标签名.
func TestErrors_UsesTagNames(t *testing.T) {
	err := rule.ValidateStruct(serverParams{Segment: "a/b", Port: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}

	want := rule.ValidationErrors{
		"base_url":      "is required",
		"route_segment": "must be a single path segment other than api, swagger",
		"port":          "must be at least 1",
	}
	if got := rule.Errors(err); !maps.Equal(got, want) {
		t.Errorf("Errors() = %v, want %v", got, want)
	}

	wantMsg := "base_url: is required; port: must be at least 1; " +
		"route_segment: must be a single path segment other than api, swagger"
	if got := rule.Message(err); got != wantMsg {
		t.Errorf("Message() = %q, want %q", got, wantMsg)
	}
}

// TestValidateVar 测试单变量校验与非校验错误的处理.
func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("avatar", "prefix"); err != nil {
		t.Errorf("ValidateVar(avatar, prefix) failed: %v", err)
	}

	if err := rule.ValidateVar("a/b", "route_segment"); err == nil {
		t.Error("ValidateVar(a/b, route_segment) should fail")
	}

	other := errors.New("boom")
	if rule.Errors(other) != nil {
		t.Error("Errors() should return nil for a non-validation error")
	}

	if got := rule.Message(other); got != "boom" {
		t.Errorf("Message() = %q, want %q", got, "boom")
	}
}
