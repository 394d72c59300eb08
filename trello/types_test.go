package trello

import "testing"

func TestClassifyEvent_CardMoved(t *testing.T) {
	body := []byte(`{"action":{"type":"updateCard","data":{"card":{"id":"card123","name":"Order #42"},"listBefore":{"id":"l1","name":"Design"},"listAfter":{"id":"l2","name":"Printing"}}}}`)

	event := ClassifyEvent(body)
	if event.Class != EventCardMoved {
		t.Fatalf("expected EventCardMoved, got %v", event.Class)
	}
	if event.CardId != "card123" || event.ListAfterId != "l2" || event.ListAfterName != "Printing" {
		t.Errorf("extracted fields: %+v", event)
	}
}

func TestClassifyEvent_UpdateCardWithoutListMove(t *testing.T) {
	// Renames and description edits are also updateCard but carry no
	// listAfter; they must be acked without side effects.
	body := []byte(`{"action":{"type":"updateCard","data":{"card":{"id":"card123","name":"Renamed"}}}}`)

	if event := ClassifyEvent(body); event.Class != EventIrrelevant {
		t.Fatalf("expected EventIrrelevant, got %v", event.Class)
	}
}

func TestClassifyEvent_OtherActionTypes(t *testing.T) {
	body := []byte(`{"action":{"type":"commentCard","data":{"card":{"id":"card123"}}}}`)

	if event := ClassifyEvent(body); event.Class != EventIrrelevant {
		t.Fatalf("expected EventIrrelevant, got %v", event.Class)
	}
}

func TestClassifyEvent_MalformedJSON(t *testing.T) {
	if event := ClassifyEvent([]byte(`{"action":`)); event.Class != EventBadRequest {
		t.Fatalf("expected EventBadRequest, got %v", event.Class)
	}
}
