package goldmark

var ExpandSteps = expandSteps
