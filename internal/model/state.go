package model

import "fmt"

// State — шаг диалога, на котором находится пользователь
type State string

const (
	StateLogin                         State = "login"
	StateLanguageSelection             State = "language_selection"
	StateWelcomeSelection              State = "welcome_selection"
	StateTrackingLoginID               State = "tracking_login_id"
	StateLoginName                     State = "login_name"
	StateLoginMobile                   State = "login_mobile"
	StateLoginAreaWard                 State = "login_area_ward"
	StateMainMenu                      State = "main_menu"
	StateCategorySelected              State = "category_selected"
	StateSubIssueSelected              State = "sub_issue_selected"
	StateWaitingImage                  State = "waiting_image"
	StateWaitingLocation               State = "waiting_location"
	StateWaitingDescription            State = "waiting_description"
	StateWaitingSolutionConfirmation   State = "waiting_solution_confirmation"
	StateWaitingResolutionConfirmation State = "waiting_resolution_confirmation"
	StatePropertyTaxInput              State = "property_tax_input"
	StateOtherIssues                   State = "other_issues"
	StateTerminated                    State = "terminated"
)

// InitialState — состояние новой или сброшенной сессии
const InitialState = StateLogin

// States перечисляет все допустимые состояния
var States = []State{
	StateLogin,
	StateLanguageSelection,
	StateWelcomeSelection,
	StateTrackingLoginID,
	StateLoginName,
	StateLoginMobile,
	StateLoginAreaWard,
	StateMainMenu,
	StateCategorySelected,
	StateSubIssueSelected,
	StateWaitingImage,
	StateWaitingLocation,
	StateWaitingDescription,
	StateWaitingSolutionConfirmation,
	StateWaitingResolutionConfirmation,
	StatePropertyTaxInput,
	StateOtherIssues,
	StateTerminated,
}

// Valid сообщает, входит ли значение в закрытый набор состояний
func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}

// ParseState проверяет строку, прочитанную из хранилища или JSON
func ParseState(raw string) (State, error) {
	s := State(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown conversation state %q", raw)
	}
	return s, nil
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown conversation state %q", string(s))
	}
	return []byte(s), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
