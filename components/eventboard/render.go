package eventboard

import (
	"io"
	"strconv"
	"time"
)

// CardAnimationStep staggers the entrance animation of consecutive cards.
const CardAnimationStep = 100 * time.Millisecond

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// RenderCards projects a snapshot into card descriptors in snapshot order.
// pulsing may be nil.
func RenderCards(snapshot Snapshot, logos LogoMapping, pulsing map[string]bool) []Card {
	cards := make([]Card, len(snapshot))
	for i, entry := range snapshot {
		cards[i] = Card{
			EventName:      entry.Name,
			Count:          entry.Count,
			LogoPath:       logos.Resolve(entry.Name),
			DisplayIndex:   i,
			AnimationDelay: time.Duration(i) * CardAnimationStep,
			Pulsing:        pulsing[entry.Name],
		}
	}
	return cards
}

// LastUpdatedText formats the last-updated label; it is empty when nothing
// has loaded yet.
func LastUpdatedText(state UIState) string {
	if state.LastUpdated == nil {
		return ""
	}
	return "Last updated: " + state.LastUpdated.Format("15:04:05")
}

// cardsTemplateData flattens cards for the template. Numbers are passed
// preformatted: the renderer round-trips data through JSON, which would turn
// counts into floats.
func cardsTemplateData(cards []Card) []map[string]any {
	out := make([]map[string]any, len(cards))
	for i, card := range cards {
		out[i] = map[string]any{
			"event_name":      card.EventName,
			"count":           strconv.Itoa(card.Count),
			"logo_path":       card.LogoPath,
			"display_index":   strconv.Itoa(card.DisplayIndex),
			"animation_delay": strconv.FormatFloat(card.AnimationDelay.Seconds(), 'f', -1, 64),
			"pulsing":         card.Pulsing,
		}
	}
	return out
}
