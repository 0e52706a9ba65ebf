package app

// SetWatchReady lets tests know when Watch has finished its initial parse.
func (app *App) SetWatchReady(fn func()) {
	app.watchReady = fn
}
