package ports

type Metrics interface {
	ReportSaved(projectID string, score int)
	ReportSigned(slot string)
	ReportCompleted(projectID string)
	TransitionRejected(operation, reason string)
	PhotoUpload(outcome string)
}
