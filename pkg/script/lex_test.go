package script

import "testing"

func TestLex_RequiresLeadingHeader(t *testing.T) {
	if _, err := Lex("1 1 add"); err == nil {
		t.Fatal("expected an error for a script missing the leading %infrared; declaration")
	}
}

func TestLex_HeaderOnly(t *testing.T) {
	entities, err := Lex("%infrared;")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(entities) != 1 || entities[0].Kind != Header {
		t.Fatalf("expected a single Header entity, got %+v", entities)
	}
}

func TestLex_NumericWithSuffix(t *testing.T) {
	entities, err := Lex("%infrared; 5s")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(entities) != 2 || entities[1].Kind != Numeric || entities[1].Lexeme() != "5s" {
		t.Fatalf("expected one Numeric entity \"5s\", got %+v", entities)
	}
}

func TestLex_BindingSigils(t *testing.T) {
	entities, err := Lex("%infrared; $foo @bar !foo ~bar")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	wantKinds := []Kind{Header, Variable, Constant, Assign, Get}
	if len(entities) != len(wantKinds) {
		t.Fatalf("got %d entities, want %d", len(entities), len(wantKinds))
	}
	for i, k := range wantKinds {
		if entities[i].Kind != k {
			t.Errorf("entity %d: kind = %v, want %v", i, entities[i].Kind, k)
		}
	}
	if entities[1].Name() != "foo" || entities[3].Name() != "foo" {
		t.Errorf("Variable/Assign name mismatch: %+v", entities)
	}
}

func TestLex_GroupAndArray(t *testing.T) {
	entities, err := Lex("%infrared; ( 1 2 ) [2]")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	wantKinds := []Kind{Header, BeginGroup, Numeric, Numeric, EndGroup, Array}
	if len(entities) != len(wantKinds) {
		t.Fatalf("got %d entities, want %d: %+v", len(entities), len(wantKinds), entities)
	}
	for i, k := range wantKinds {
		if entities[i].Kind != k {
			t.Errorf("entity %d: kind = %v, want %v", i, entities[i].Kind, k)
		}
	}
	if entities[5].Count() != 2 {
		t.Errorf("Array count = %d, want 2", entities[5].Count())
	}
}

func TestLex_QuotedAndCurlyLiterals(t *testing.T) {
	entities, err := Lex(`%infrared; "hi" txt{nested {braces}}`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(entities) != 3 {
		t.Fatalf("got %d entities, want 3: %+v", len(entities), entities)
	}
	if entities[1].Kind != StringLiteral || entities[1].StringKind() != Quoted || entities[1].StringValue() != "hi" {
		t.Errorf("quoted literal: %+v", entities[1])
	}
	if entities[2].Kind != StringLiteral || entities[2].StringKind() != Curly || entities[2].Prefix() != "txt" || entities[2].StringValue() != "nested {braces}" {
		t.Errorf("curly literal: %+v", entities[2])
	}
}

func TestLex_LineComments(t *testing.T) {
	entities, err := Lex("%infrared; # a comment\nadd")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(entities) != 2 || entities[1].Kind != Operation || entities[1].Name() != "add" {
		t.Fatalf("expected one Operation entity after the comment, got %+v", entities)
	}
}

func TestLex_UnterminatedStringIsAnError(t *testing.T) {
	if _, err := Lex(`%infrared; "unterminated`); err == nil {
		t.Fatal("expected an error for an unterminated quoted string")
	}
}
