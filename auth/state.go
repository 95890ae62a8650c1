package auth

// AttemptState is the progress of one login attempt.
type AttemptState int

const (
	NotStarted AttemptState = iota
	AwaitingProviderResponse
	ValidatingState
	FetchingUserInfo
	ReconstructingKey
	Committed
	Errored
)

var attemptStateNames = map[AttemptState]string{
	NotStarted:               "not_started",
	AwaitingProviderResponse: "awaiting_provider_response",
	ValidatingState:          "validating_state",
	FetchingUserInfo:         "fetching_user_info",
	ReconstructingKey:        "reconstructing_key",
	Committed:                "committed",
	Errored:                  "errored",
}

func (s AttemptState) String() string {
	if name, ok := attemptStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// StateObserver is called on every attempt state change.
type StateObserver func(attemptID string, state AttemptState)
