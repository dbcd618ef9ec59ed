package bubbletea

// BlockSeparator exports blockSeparator for testing.
func BlockSeparator(prev, curr MessageBlock) string {
	return blockSeparator(prev, curr)
}

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}

// SetRunning puts the model in a running state with the given cancel function.
func SetRunning(m Model, cancel func()) Model {
	m.running = true
	m.cancel = cancel
	return m
}
