package ged

import (
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    line
		wantErr bool
	}{
		{
			name: "plain tag",
			raw:  "0 HEAD",
			want: line{level: 0, tag: "HEAD"},
		},
		{
			name: "entity with cross-reference",
			raw:  "0 @I1@ INDI",
			want: line{level: 0, xref: "@I1@", tag: "INDI"},
		},
		{
			name: "value keeps internal spacing",
			raw:  "1 NAME John  Jacob /Doe/",
			want: line{level: 1, tag: "NAME", value: "John  Jacob /Doe/"},
		},
		{
			name: "lowercase tag uppercased",
			raw:  "1 name John /Doe/",
			want: line{level: 1, tag: "NAME", value: "John /Doe/"},
		},
		{
			name: "pointer value",
			raw:  "1 FAMC @F1@",
			want: line{level: 1, tag: "FAMC", value: "@F1@"},
		},
		{name: "non-numeric level", raw: "x NAME John", wantErr: true},
		{name: "negative level", raw: "-1 NAME John", wantErr: true},
		{name: "level only", raw: "0", wantErr: true},
		{name: "malformed cross-reference", raw: "0 @I1 INDI", wantErr: true},
		{name: "cross-reference without tag", raw: "0 @I1@", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(1, tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseLine(%q) should fail", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLine(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("parseLine(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBuildTree(t *testing.T) {
	text := strings.Join([]string{
		"0 HEAD",
		"1 CHAR UTF-8",
		"0 @I1@ INDI",
		"1 BIRT",
		"2 DATE 1 JAN 1900",
		"0 TRLR",
	}, "\n")
	root, err := buildTree(text)
	if err != nil {
		t.Fatalf("buildTree() error: %v", err)
	}
	if len(root.Children) != 3 {
		t.Fatalf("got %d top-level records, want 3", len(root.Children))
	}
	indi := root.Children[1]
	if indi.Tag != "INDI" || indi.XrefID != "@I1@" {
		t.Errorf("record 1 = %+v", indi)
	}
	if len(indi.Children) != 1 || indi.Children[0].Tag != "BIRT" {
		t.Fatalf("INDI children = %+v", indi.Children)
	}
	date := indi.Children[0].Children[0]
	if date.Tag != "DATE" || date.Value != "1 JAN 1900" {
		t.Errorf("DATE node = %+v", date)
	}
}

func TestBuildTreeSkipsBlankLines(t *testing.T) {
	root, err := buildTree("0 HEAD\n\n   \n0 TRLR\n")
	if err != nil {
		t.Fatalf("buildTree() error: %v", err)
	}
	if len(root.Children) != 2 {
		t.Errorf("got %d records, want 2", len(root.Children))
	}
}

func TestBuildTreeLevelSkip(t *testing.T) {
	_, err := buildTree("0 HEAD\n2 VERS 5.5\n")
	if err == nil {
		t.Fatal("buildTree() should reject a level jump from 0 to 2")
	}
	if !strings.Contains(err.Error(), "skips a level") {
		t.Errorf("error = %v", err)
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	_, err := buildTree("")
	if err == nil || !strings.Contains(err.Error(), "no records found") {
		t.Errorf("buildTree(\"\") = %v, want no records found", err)
	}
}

func TestBuildTreeMalformedLine(t *testing.T) {
	_, err := buildTree("0 HEAD\nnot a gedcom line\n")
	if err == nil {
		t.Fatal("buildTree() should reject an unparseable line")
	}
}
