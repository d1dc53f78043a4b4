package transcript

// Intent is a reason to scroll to the bottom. Higher values win when several
// arrive in the same pass.
type Intent int

const (
	IntentNone Intent = iota
	IntentKeyboard
	IntentNewTurn
	IntentChatLoad
	IntentExplicit
)

func (i Intent) String() string {
	switch i {
	case IntentKeyboard:
		return "keyboard"
	case IntentNewTurn:
		return "new-turn"
	case IntentChatLoad:
		return "chat-load"
	case IntentExplicit:
		return "explicit"
	default:
		return "none"
	}
}

// priority maps an intent to its task queue priority. New turns and chat
// loads share a rank.
func (i Intent) priority() int {
	switch i {
	case IntentKeyboard:
		return 1
	case IntentNewTurn, IntentChatLoad:
		return 2
	case IntentExplicit:
		return 3
	default:
		return 0
	}
}

type scrollRequest struct {
	intent   Intent
	animated bool
}

// scrollQueue collects the scroll intents raised during one update pass and
// resolves them to a single effect. Losing intents are dropped.
type scrollQueue struct {
	pending scrollRequest
}

func (q *scrollQueue) submit(r scrollRequest) {
	if r.intent.priority() > q.pending.intent.priority() {
		q.pending = r
	}
}

func (q *scrollQueue) resolve() (scrollRequest, bool) {
	r := q.pending
	q.pending = scrollRequest{}
	return r, r.intent != IntentNone
}
