package auth

import (
	"github.com/gorilla/sessions"
)

// outcome counter for provider sign-ins, optional
type Recorder interface {
	RecordAuthOperation(op string, err error)
}

type Deps struct {
	Store     sessions.Store
	Providers []string
	Recorder  Recorder
}
