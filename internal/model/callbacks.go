package model

//
// Run event callbacks
//

// Callbacks contains the callbacks through which the engine informs
// the presentation layer about the progress of a run.
type Callbacks interface {
	// OnProgress provides information about the run progress.
	OnProgress(percentage float64, message string)
}

// PrinterCallbacks is the default Callbacks implementation, which
// prints the progress through the given logger.
type PrinterCallbacks struct {
	Logger
}

// NewPrinterCallbacks returns a new PrinterCallbacks instance.
func NewPrinterCallbacks(logger Logger) PrinterCallbacks {
	return PrinterCallbacks{Logger: logger}
}

// OnProgress provides information about the run progress.
func (d PrinterCallbacks) OnProgress(percentage float64, message string) {
	d.Logger.Infof("[%5.1f%%] %s", percentage*100, message)
}
