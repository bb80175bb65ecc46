package web

// Middleware represents the signature for any middleware function.
type Middleware func(Handler) Handler

func applyMiddlewares(handler Handler, mids ...Middleware) Handler {
	//the last one must be applied first so it runs innermost
	for i := len(mids) - 1; i >= 0; i-- {
		mid := mids[i]
		if mid != nil {
			handler = mid(handler)
		}
	}
	return handler
}
