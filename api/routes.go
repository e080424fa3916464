package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// CurvesEndpoint is the endpoint for submitting a curve to count
	CurvesEndpoint = "/curves"
	// CurveEndpoint is the endpoint to get a stored count result
	CurveURLParam = "curveId"
	CurveEndpoint = "/curves/{" + CurveURLParam + "}"
	// WaitQueryParam makes a curve submission count synchronously instead
	// of going through the queue
	WaitQueryParam = "wait"
)