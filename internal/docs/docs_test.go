package docs

import "testing"

func TestTopicsAndGet(t *testing.T) {
	topics := Topics()
	if len(topics) == 0 {
		t.Fatalf("no embedded topics")
	}
	for _, topic := range topics {
		if _, ok := Get(topic); !ok {
			t.Fatalf("topic %q listed but not readable", topic)
		}
	}
	if _, ok := Get("Chains"); !ok {
		t.Fatalf("topic lookup must be case-insensitive")
	}
	if _, ok := Get("no-such-topic"); ok {
		t.Fatalf("unknown topic must report false")
	}
}
