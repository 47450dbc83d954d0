package app

import (
	"github.com/soocke/sentinel-go/ui/model"
	"github.com/soocke/sentinel-go/ui/view"
)

func viewHandlers(a *app) view.RootHandlers {
	c := a.c
	return view.RootHandlers{
		ToggleCapture: c.CapturePresenter.Toggle,
		OpenLiveFeed:  func() { c.Route.Navigate(model.RouteLiveFeed) },
		SelectCamera:  c.SelectCamera,
		Exit:          a.exitHandler,
	}
}
