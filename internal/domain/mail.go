package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ScheduleGeneratedMailData struct {
	FullName    string  `json:"fullName"`
	WindowName  string  `json:"windowName"`
	HardPenalty float64 `json:"hardPenalty"`
	SoftPenalty float64 `json:"softPenalty"`
	FinishedAt  string  `json:"finishedAt"`
}
