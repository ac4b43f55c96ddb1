package flipbook

// Frame contains a set of operations for drawing.
type Frame struct {
	DrawOperations []DrawOperation
}

// Draw draws the frame operations in order, stopping at the first error.
func (frame *Frame) Draw(surface Surface) error {
	for _, drawOperation := range frame.DrawOperations {
		err := drawOperation.Draw(surface)
		if err != nil {
			return err
		}
	}
	return nil
}

// Render draws the frame between surface Begin and End.
func (frame *Frame) Render(surface Surface) error {
	if err := surface.Begin(); err != nil {
		return err
	}
	err := frame.Draw(surface)
	if endErr := surface.End(); err == nil {
		err = endErr
	}
	return err
}
