package espocrm

import "testing"

func TestBuildQueryFlat(t *testing.T) {
	got := BuildQuery(map[string]any{"b": "two", "a": 1})
	if got != "a=1&b=two" {
		t.Fatalf("unexpected query: %q", got)
	}
}

func TestBuildQueryNested(t *testing.T) {
	params := map[string]any{
		"where": []any{
			map[string]any{
				"type":      "equals",
				"attribute": "id",
				"value":     "c1",
			},
		},
		"maxSize": 10,
	}
	got := BuildQuery(params)
	want := "maxSize=10&where%5B0%5D%5Battribute%5D=id&where%5B0%5D%5Btype%5D=equals&where%5B0%5D%5Bvalue%5D=c1"
	if got != want {
		t.Fatalf("unexpected query:\n got %q\nwant %q", got, want)
	}
}

func TestBuildQueryTopLevelArray(t *testing.T) {
	got := BuildQuery([]any{"x", "y"})
	if got != "%5B0%5D=x&%5B1%5D=y" {
		t.Fatalf("unexpected query: %q", got)
	}
}

func TestBuildQueryDeterministic(t *testing.T) {
	params := map[string]any{"z": 1, "m": 2, "a": 3}
	first := BuildQuery(params)
	for i := 0; i < 10; i++ {
		if next := BuildQuery(params); next != first {
			t.Fatalf("query not deterministic: %q vs %q", first, next)
		}
	}
}
