package notify

// EmailConfig is the SMTP configuration for alarm notification mail.
type EmailConfig struct {
	SMTPServer string `json:"smtp_server"`
	Port       int    `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Sender     string `json:"sender"`
}

// AudioConfig names the sound the backend plays when an alarm fires.
// The file itself lives on the backend; the gateway only selects it.
type AudioConfig struct {
	Filename string `json:"filename"`
}
