package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPNotifier mails claim notifications to the ops mailbox. The server in
// use does not support TLS, so smtp.Auth is reimplemented to pass the LOGIN
// exchange without the TLS check.
type SMTPNotifier struct {
	host string
	port string
	from string
	to   string

	auth smtp.Auth
}

func NewSMTPNotifier(host, port, user, password, from, to string) *SMTPNotifier {
	return &SMTPNotifier{
		host: host,
		port: port,
		from: from,
		to:   to,
		auth: getLoginAuth(user, password),
	}
}

type loginAuth struct {
	username, password string
}

func getLoginAuth(username, password string) smtp.Auth {
	return &loginAuth{username, password}
}

func (a *loginAuth) Start(_ *smtp.ServerInfo) (proto string, toServe []byte, err error) {
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	command := string(fromServer)
	command = strings.TrimSpace(command)
	command = strings.TrimSuffix(command, ":")
	command = strings.ToLower(command)

	if more {
		if command == "username" {
			return []byte(a.username), nil
		} else if command == "password" {
			return []byte(a.password), nil
		} else {
			// We've already sent everything.
			return nil, fmt.Errorf("unexpected server challenge: %s", command)
		}
	}
	return nil, nil
}

func (n *SMTPNotifier) Dispatch(_ context.Context, ev Event) error {
	var subject, body string
	switch ev.Type {
	case EventBatchGenerated:
		subject = "New candidate batch"
		body = fmt.Sprintf("Batch %d generated for project %d.", ev.BatchID, ev.ProjectID)
	case EventProjectClaimed:
		subject = "Project claimed"
		body = fmt.Sprintf("Developer %d claimed project %d.", ev.DeveloperID, ev.ProjectID)
	case EventCandidateStatusChanged:
		subject = "Candidate status changed"
		body = fmt.Sprintf("Candidate %d on project %d is now %s.", ev.CandidateID, ev.ProjectID, ev.Status)
	default:
		return fmt.Errorf("unsupported event type: %s", ev.Type)
	}

	msg := []byte("To: " + n.to + "\r\n" +
		"From: " + n.from + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body)

	return smtp.SendMail(n.host+":"+n.port, n.auth, n.from, []string{n.to}, msg)
}
