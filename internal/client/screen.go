package client

// drawFrame writes the canvas and HUD for the current frame.
func (s *Session) drawFrame() error {
	// Hiding the HUD leaves text on cells the canvas thinks are unchanged.
	if s.state.ShowHUD != s.state.wasHUD {
		s.chunkWriter.WriteString("\033[H\033[2J")
		s.canvas.ForceRedraw()
		s.state.wasHUD = s.state.ShowHUD
	}

	// Render canvas to terminal
	s.canvas.Render(s.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	s.canvas.RenderBorder(s.chunkWriter)

	if s.state.ShowHUD {
		s.drawHUD()
	}

	return s.chunkWriter.Flush()
}

// drawHUD draws the status line at the top and key help at the bottom.
func (s *Session) drawHUD() {
	width := s.canvas.TerminalWidth()
	height := s.canvas.TerminalHeight()
	if width == 0 || height < 2 {
		return
	}

	s.chunkWriter.WriteAt(1, 1, s.styles.Status(s.username, s.renderer.Stats(), s.state.FPS(), width))
	s.chunkWriter.WriteAt(1, height, s.styles.Help(width))
	s.chunkWriter.WriteString("\033[0m")
}
