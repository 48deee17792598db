package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
)

// TwiML is a minimal Twilio Markup Language response builder.
// It intentionally avoids any provider SDK dependency.
//
// Only include primitives we need at the adapter boundary.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlDial struct {
	XMLName    xml.Name         `xml:"Dial"`
	Conference *twimlConference `xml:"Conference,omitempty"`
}

type twimlConference struct {
	StartConferenceOnEnter bool   `xml:"startConferenceOnEnter,attr"`
	EndConferenceOnExit    bool   `xml:"endConferenceOnExit,attr"`
	Room                   string `xml:",chardata"`
}

// RenderConference produces the merge document that places any leg into
// the shared bridge room. The room opens when the first participant
// enters and tears down for everyone when any participant leaves; there
// is intentionally no waiting room once either side hangs up.
func RenderConference(room string) (string, error) {
	if strings.TrimSpace(room) == "" {
		return "", errors.New("telephony: conference room is required")
	}
	return render(twimlDial{Conference: &twimlConference{
		StartConferenceOnEnter: true,
		EndConferenceOnExit:    true,
		Room:                   room,
	}})
}

// RenderAnnouncement speaks one message and terminates the call.
func RenderAnnouncement(message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.New("telephony: announcement message is required")
	}
	return render(twimlSay{Text: message}, twimlHangup{})
}

// RenderSay speaks one message without hanging up. Used as the degraded
// response when the assistant connector is unavailable.
func RenderSay(message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.New("telephony: message is required")
	}
	return render(twimlSay{Text: message})
}

func render(verbs ...any) (string, error) {
	r := twimlResponse{Verbs: verbs}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
