package eml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sensepost/edbxtract/bytesx"
	"github.com/sensepost/edbxtract/proptag"
)

const sampleMessage = "From: Jane Roe <jane.roe@example.com>\r\n" +
	"To: John Doe <john.doe@example.com>, Team <team@example.com>\r\n" +
	"Subject: Quarterly update\r\n" +
	"Date: Mon, 02 Jan 2006 15:04:05 +0000\r\n" +
	"Importance: high\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"Body text here.\r\n"

func TestTranslate_BasicFields(t *testing.T) {
	translated, derr := Translate(strings.NewReader(sampleMessage))
	require.Nil(t, derr)

	subjectBytes := translated.Properties[proptag.PidTagSubject.Uint32()]
	require.Equal(t, "Quarterly update", bytesx.UTF16LEToString(subjectBytes))

	senderBytes := translated.Properties[proptag.PidTagSenderName.Uint32()]
	require.Equal(t, "Jane Roe", bytesx.UTF16LEToString(senderBytes))

	emailBytes := translated.Properties[proptag.PidTagSenderEmailAddress.Uint32()]
	require.Equal(t, "jane.roe@example.com", bytesx.UTF16LEToString(emailBytes))

	require.Len(t, translated.Recipients, 2)
	require.Equal(t, "john.doe@example.com", translated.Recipients[0].Address)
	require.Equal(t, proptag.RecipientTo, translated.Recipients[0].Type)
}

func TestTranslate_ImportanceHigh(t *testing.T) {
	translated, derr := Translate(strings.NewReader(sampleMessage))
	require.Nil(t, derr)

	importanceBytes := translated.Properties[proptag.PidTagImportance.Uint32()]
	require.Len(t, importanceBytes, 4)
	require.Equal(t, int32(proptag.ImportanceHigh), int32(importanceBytes[0])|int32(importanceBytes[1])<<8|int32(importanceBytes[2])<<16|int32(importanceBytes[3])<<24)
}

func TestParseImportance_Defaults(t *testing.T) {
	require.Equal(t, proptag.ImportanceNormal, parseImportance(""))
	require.Equal(t, proptag.ImportanceNormal, parseImportance("normal"))
	require.Equal(t, proptag.ImportanceLow, parseImportance("low"))
}
