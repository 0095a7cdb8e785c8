package model

// ErrorCode is reported to clients in error messages
type ErrorCode string

const (
	CodeInvalidJSON     ErrorCode = "INVALID_JSON"
	CodeInvalidNickname ErrorCode = "INVALID_NICKNAME"
	CodeNicknameTaken   ErrorCode = "NICKNAME_TAKEN"
	CodeGameInProgress  ErrorCode = "GAME_IN_PROGRESS"
	CodeInvalidQuestion ErrorCode = "INVALID_QUESTION"
	CodeQuestionClosed  ErrorCode = "QUESTION_CLOSED"
	CodeAlreadyAnswered ErrorCode = "ALREADY_ANSWERED"
	CodeInvalidOption   ErrorCode = "INVALID_OPTION"
)

// GameError is a validation rejection sent back to the requesting session
type GameError struct {
	Code    ErrorCode
	Message string
}

func (e *GameError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is matches any GameError with the same code
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	return ok && t.Code == e.Code
}

// ToMessage converts the error to its wire payload
func (e *GameError) ToMessage() ErrorMessage {
	return ErrorMessage{Code: e.Code, Message: e.Message}
}
