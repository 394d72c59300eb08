package trello

import "encoding/json"

// webhookPayload is the subset of the board service's action payload this
// system reads. Everything else in the delivery is ignored.
type webhookPayload struct {
	Action struct {
		Type string `json:"type"`
		Data struct {
			Card struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"card"`
			ListBefore struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"listBefore"`
			ListAfter struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"listAfter"`
		} `json:"data"`
	} `json:"action"`
}

type EventClass int

const (
	// EventBadRequest: body is not valid JSON. 400, no retry is useful.
	EventBadRequest EventClass = iota
	// EventIrrelevant: valid delivery this system does not act on
	// (comments, due-date changes, moves missing identifiers). Acked with
	// 200 so the sender stops retrying.
	EventIrrelevant
	// EventCardMoved: a card changed lists and both identifiers are present.
	EventCardMoved
)

type ClassifiedEvent struct {
	Class         EventClass
	CardId        string
	ListAfterId   string
	ListAfterName string
}

// ClassifyEvent parses a verified payload and decides whether it is a
// card-moved event worth processing.
func ClassifyEvent(body []byte) ClassifiedEvent {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return ClassifiedEvent{Class: EventBadRequest}
	}
	if payload.Action.Type != "updateCard" {
		return ClassifiedEvent{Class: EventIrrelevant}
	}
	cardId := payload.Action.Data.Card.ID
	listAfterId := payload.Action.Data.ListAfter.ID
	if cardId == "" || listAfterId == "" {
		// updateCard also fires for renames and description edits, which
		// carry no listAfter.
		return ClassifiedEvent{Class: EventIrrelevant}
	}
	return ClassifiedEvent{
		Class:         EventCardMoved,
		CardId:        cardId,
		ListAfterId:   listAfterId,
		ListAfterName: payload.Action.Data.ListAfter.Name,
	}
}
