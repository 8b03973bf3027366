package binparse

import (
	"errors"
	"testing"

	"github.com/tidwall/sjson"
)

func sampleDescriptor(t *testing.T) []byte {
	t.Helper()

	doc := ""
	var err error
	doc, err = sjson.Set(doc, "classes.0.name", "Account")
	if err != nil {
		t.Fatal(err)
	}
	doc, _ = sjson.Set(doc, "classes.0.methods.0.name", "deposit")
	doc, _ = sjson.Set(doc, "classes.0.methods.0.arity", 1)
	doc, _ = sjson.Set(doc, "classes.0.methods.1.name", "describe")
	doc, _ = sjson.Set(doc, "classes.0.methods.1.static", true)
	doc, _ = sjson.Set(doc, "classes.0.meta.source", "core.bank")
	doc, _ = sjson.Set(doc, "classes.1.name", "SavingsAccount")
	doc, _ = sjson.Set(doc, "classes.1.super", "Account")
	return []byte(doc)
}

func TestParse(t *testing.T) {
	p := NewJSONParser()
	desc, err := p.Parse(sampleDescriptor(t), false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(desc.Classes) != 2 {
		t.Fatalf("classes = %d, want 2", len(desc.Classes))
	}

	acct, ok := desc.FindClass("Account")
	if !ok {
		t.Fatal("FindClass(Account) failed")
	}
	if len(acct.Methods) != 2 {
		t.Fatalf("methods = %d, want 2", len(acct.Methods))
	}
	if acct.Methods[0].Name != "deposit" || acct.Methods[0].Arity != 1 {
		t.Fatalf("method 0 = %+v", acct.Methods[0])
	}
	if !acct.Methods[1].Static {
		t.Fatal("describe not static")
	}
	if acct.Meta != nil {
		t.Fatal("meta populated without includeMeta")
	}

	sav, ok := desc.FindClass("SavingsAccount")
	if !ok || sav.Super != "Account" {
		t.Fatalf("SavingsAccount = %+v", sav)
	}

	if _, ok := desc.FindClass("Missing"); ok {
		t.Fatal("FindClass found missing class")
	}
}

func TestParseIncludeMeta(t *testing.T) {
	p := NewJSONParser()
	desc, err := p.Parse(sampleDescriptor(t), true)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	acct, _ := desc.FindClass("Account")
	if acct.Meta["source"] != "core.bank" {
		t.Fatalf("meta = %v", acct.Meta)
	}
}

func TestParseMalformed(t *testing.T) {
	p := NewJSONParser()

	cases := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"invalid json", "{nope"},
		{"no classes", `{"other": 1}`},
		{"classes not array", `{"classes": {}}`},
		{"class without name", `{"classes": [{"super": "X"}]}`},
		{"method without name", `{"classes": [{"name": "X", "methods": [{"arity": 1}]}]}`},
	}
	for _, tc := range cases {
		if _, err := p.Parse([]byte(tc.data), false); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: err = %v, want ErrMalformed", tc.name, err)
		}
	}
}
