package model

// Route paths.
const (
	RouteHome     = "/"
	RouteLiveFeed = "/live-feed"
)

// RouteModel is the current navigation context. It lives on the UI thread.
type RouteModel struct {
	path      string
	listeners []func(prev, next string)
}

func NewRouteModel() *RouteModel { return &RouteModel{path: RouteHome} }

func (m *RouteModel) Current() string {
	if m == nil || m.path == "" {
		return RouteHome
	}
	return m.path
}

// Navigate switches to path and notifies listeners when it changed.
func (m *RouteModel) Navigate(path string) {
	if m == nil {
		return
	}
	if path == "" {
		path = RouteHome
	}
	prev := m.Current()
	if prev == path {
		return
	}
	m.path = path
	for _, fn := range m.listeners {
		fn(prev, path)
	}
}

// OnChange registers fn for route transitions.
func (m *RouteModel) OnChange(fn func(prev, next string)) {
	if m == nil || fn == nil {
		return
	}
	m.listeners = append(m.listeners, fn)
}
