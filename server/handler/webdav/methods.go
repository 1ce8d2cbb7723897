package webdav

const (
	MethodGet       = "GET"
	MethodHead      = "HEAD"
	MethodPut       = "PUT"
	MethodDelete    = "DELETE"
	MethodOptions   = "OPTIONS"
	MethodPropfind  = "PROPFIND"
	MethodProppatch = "PROPPATCH"
	MethodMkcol     = "MKCOL"
	MethodCopy      = "COPY"
	MethodMove      = "MOVE"
	MethodLock      = "LOCK"
	MethodUnlock    = "UNLOCK"
)

var AllowMethods = []string{
	MethodOptions,
	MethodGet,
	MethodHead,
	MethodPut,
	MethodDelete,
	MethodPropfind,
	MethodProppatch,
	MethodMkcol,
	MethodCopy,
	MethodMove,
}

// davOnlyMethods 不需要Authorization头也由webdav处理的方法
var davOnlyMethods = map[string]bool{
	MethodPut:       true,
	MethodDelete:    true,
	MethodOptions:   true,
	MethodPropfind:  true,
	MethodProppatch: true,
	MethodMkcol:     true,
	MethodCopy:      true,
	MethodMove:      true,
	MethodLock:      true,
	MethodUnlock:    true,
}
