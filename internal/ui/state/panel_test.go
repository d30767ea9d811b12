package state

import (
	"reflect"
	"testing"
)

func TestPathStartsAtRootAndSeeds(t *testing.T) {
	p := NewPath()
	if p.Top() != Root || len(p.Panels()) != 1 {
		t.Fatalf("expected bare root path, got %s", p)
	}
	if !p.Seed() {
		t.Fatal("expected seed from root")
	}
	if p.Seed() {
		t.Fatal("seed should be a no-op once a panel is focused")
	}
	if got := p.String(); got != "Root > TabBar" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestPathPushAndReplaceTop(t *testing.T) {
	p := NewPath()
	p.Seed()
	p.ReplaceTop(SubscribeInput)
	if len(p.Panels()) != 2 || p.Top() != SubscribeInput {
		t.Fatalf("replace should keep depth, got %s", p)
	}
	p.ReplaceTop(SubscriptionList)
	p.Push(ListItem(0))
	if len(p.Panels()) != 3 {
		t.Fatalf("push should grow the path, got %s", p)
	}
	if got := p.Panels()[1]; got != SubscriptionList {
		t.Fatalf("unexpected parent %s", got)
	}
	p.ReplaceTop(ListItem(2))
	want := []Panel{Root, SubscriptionList, ListItem(2)}
	if !reflect.DeepEqual(p.Panels(), want) {
		t.Fatalf("expected %v, got %v", want, p.Panels())
	}
	if p.Top().String() != "SubscriptionListItem(2)" {
		t.Fatalf("unexpected top label %q", p.Top())
	}

	bare := NewPath()
	bare.ReplaceTop(TabBar)
	if len(bare.Panels()) != 2 || bare.Panels()[0] != Root {
		t.Fatalf("replacing on a bare path must keep root, got %s", bare)
	}
}

func TestPathPopNeverRemovesRoot(t *testing.T) {
	p := NewPath()
	p.Seed()
	p.ReplaceTop(SubscriptionList)
	p.Push(ListItem(1))

	for i := 0; i < 10; i++ {
		p.Pop()
		if len(p.Panels()) < 1 {
			t.Fatal("path emptied")
		}
	}
	if p.Top() != Root {
		t.Fatalf("expected root floor, got %s", p)
	}
	if _, ok := p.Pop(); ok {
		t.Fatal("pop at root should report false")
	}
}
