package envutil

import (
	"reflect"
	"testing"
	"time"
)

func TestLookups(t *testing.T) {
	t.Setenv("DALY_TEST_STR", "  value ")
	t.Setenv("DALY_TEST_INT", "12")
	t.Setenv("DALY_TEST_BAD_INT", "twelve")
	t.Setenv("DALY_TEST_BOOL", "Yes")
	t.Setenv("DALY_TEST_DUR", "1500ms")
	t.Setenv("DALY_TEST_BLANK", "   ")

	if got := String("DALY_TEST_STR", "def"); got != "value" {
		t.Fatalf("String=%q", got)
	}
	if got := String("DALY_TEST_BLANK", "def"); got != "def" {
		t.Fatalf("blank String=%q", got)
	}
	if got := Int("DALY_TEST_INT", 0); got != 12 {
		t.Fatalf("Int=%d", got)
	}
	if got := Int("DALY_TEST_BAD_INT", 7); got != 7 {
		t.Fatalf("bad Int=%d", got)
	}
	if !Bool("DALY_TEST_BOOL", false) || Bool("DALY_TEST_UNSET", false) {
		t.Fatalf("Bool mismatch")
	}
	if got := Duration("DALY_TEST_DUR", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("Duration=%s", got)
	}
	if got := First("DALY_TEST_BLANK", "DALY_TEST_UNSET", "DALY_TEST_STR"); got != "value" {
		t.Fatalf("First=%q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" https://a.example ,, http://localhost:5173 ,")
	want := []string{"https://a.example", "http://localhost:5173"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitList=%v", got)
	}
	if SplitList("") != nil {
		t.Fatalf("empty input should give nil")
	}
}
