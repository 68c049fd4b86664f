package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every module that serves HTTP routes.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
