package cluster

// reply is the framing kind of one line of a scan response stream.
type reply int

const (
	replyUnknown reply = iota
	replyRow
	replyEnd
	replyError
)

// decodeReply decodes one response line into its framing kind and returns
// the payload that follows the marker.
func decodeReply(buf []byte) (reply, []byte) {
	if len(buf) < 3 { // Minimum length for markers
		return replyUnknown, nil
	}

	// Early return based on first byte
	switch buf[0] {
	case 'R': // ROW <json>
		if len(buf) >= 4 && buf[1] == 'O' && buf[2] == 'W' && buf[3] == ' ' {
			return replyRow, buf[4:]
		}
	case 'E': // END or ERROR: <msg>
		if len(buf) == 3 && buf[1] == 'N' && buf[2] == 'D' {
			return replyEnd, nil
		}
		if len(buf) >= 7 && buf[1] == 'R' && buf[2] == 'R' && buf[3] == 'O' &&
			buf[4] == 'R' && buf[5] == ':' && buf[6] == ' ' {
			return replyError, buf[7:]
		}
	}

	return replyUnknown, nil
}
