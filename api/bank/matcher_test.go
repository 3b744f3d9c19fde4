package bank

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VereinsKasse/api/constants"
	"VereinsKasse/api/members"
)

func strPtr(s string) *string { return &s }

func testMember(id int64, first, last, status string, iban string) members.Member {
	m := members.Member{ID: id, FirstName: first, LastName: last, Status: status}
	if iban != "" {
		m.IBAN = strPtr(iban)
	}
	return m
}

func TestMatchMemberByIBAN(t *testing.T) {
	roster := []members.Member{
		testMember(1, "Max", "Mustermann", constants.MemberStatusActive, "DE89 3704 0044 0532 0130 00"),
		testMember(2, "Erika", "Musterfrau", constants.MemberStatusActive, ""),
	}

	m, kind := MatchMember("DE89370400440532013000", "irrelevant", "irrelevant", roster)
	require.NotNil(t, m)
	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, constants.MatchKindIBAN, kind)
}

func TestMatchMemberIBANIgnoresStatus(t *testing.T) {
	roster := []members.Member{
		testMember(1, "Max", "Mustermann", constants.MemberStatusInactive, "DE89370400440532013000"),
	}
	m, kind := MatchMember("DE89370400440532013000", "", "", roster)
	require.NotNil(t, m)
	assert.Equal(t, constants.MatchKindIBAN, kind)
}

func TestMatchMemberByName(t *testing.T) {
	roster := []members.Member{
		testMember(1, "Max", "Mustermann", constants.MemberStatusActive, ""),
		testMember(2, "Erika", "Musterfrau", constants.MemberStatusActive, ""),
	}

	m, kind := MatchMember("", "MAX MUSTERMANN", "Beitrag 2026", roster)
	require.NotNil(t, m)
	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, constants.MatchKindName, kind)

	m, kind = MatchMember("", "Ueberweisung", "Musterfrau Maerz", roster)
	require.NotNil(t, m)
	assert.Equal(t, int64(2), m.ID)
	assert.Equal(t, constants.MatchKindName, kind)
}

func TestMatchMemberNameSkipsInactiveAndShortNames(t *testing.T) {
	roster := []members.Member{
		testMember(1, "Li", "Wu", constants.MemberStatusActive, ""),
		testMember(2, "Max", "Mustermann", constants.MemberStatusInactive, ""),
	}

	m, kind := MatchMember("", "Wu Mustermann", "", roster)
	assert.Nil(t, m)
	assert.Equal(t, "", kind)
}

func TestMatchMemberIBANWinsOverName(t *testing.T) {
	roster := []members.Member{
		testMember(1, "Max", "Mustermann", constants.MemberStatusActive, ""),
		testMember(2, "Erika", "Musterfrau", constants.MemberStatusActive, "DE02120300000000202051"),
	}

	m, kind := MatchMember("DE02120300000000202051", "Max Mustermann", "", roster)
	require.NotNil(t, m)
	assert.Equal(t, int64(2), m.ID)
	assert.Equal(t, constants.MatchKindIBAN, kind)
}

func TestBuildDescription(t *testing.T) {
	assert.Equal(t, "Max Mustermann – Beitrag", BuildDescription("Max Mustermann", "Beitrag"))
	assert.Equal(t, "Beitrag", BuildDescription("", "Beitrag"))
	assert.Equal(t, "Bankeingang", BuildDescription("", ""))

	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, BuildDescription(string(long), ""), 500)
}

func TestBuildDescriptionTruncatesWholeRunes(t *testing.T) {
	desc := BuildDescription("a"+strings.Repeat("ä", 600), "")

	assert.True(t, utf8.ValidString(desc))
	assert.Equal(t, 500, utf8.RuneCountInString(desc))
}

func TestReconcileRecords(t *testing.T) {
	roster := []members.Member{
		testMember(1, "Max", "Mustermann", constants.MemberStatusActive, "DE89370400440532013000"),
		testMember(2, "Erika", "Musterfrau", constants.MemberStatusActive, ""),
	}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []RawBankRecord{
		{BookingDate: day, Counterparty: "Max Mustermann", IBAN: "DE89370400440532013000",
			Purpose: "Beitrag", Amount: decimal.RequireFromString("45.50"), Currency: "EUR"},
		{BookingDate: day, Counterparty: "Musterfrau Erika", Purpose: "Beitrag",
			Amount: decimal.RequireFromString("-10.00"), Currency: "EUR"},
		{BookingDate: day, Counterparty: "Unbekannt GmbH", Purpose: "Miete",
			Amount: decimal.RequireFromString("500.00"), Currency: "EUR"},
	}

	outcome := ReconcileRecords(records, roster, true)
	require.Len(t, outcome.Results, 3)
	assert.Equal(t, 2, outcome.MemberMatches)
	// the Musterfrau record matched but is an outflow, so it is never
	// booked; the unmatched inflow is booked without a member link
	assert.Equal(t, 2, outcome.LedgerCreated)
	require.Len(t, outcome.Entries, 2)
	require.NotNil(t, outcome.Entries[0].MemberID)
	assert.Equal(t, int64(1), *outcome.Entries[0].MemberID)
	assert.Equal(t, "Max Mustermann – Beitrag", outcome.Entries[0].Description)
	assert.Nil(t, outcome.Entries[1].MemberID)
	assert.Equal(t, "Unbekannt GmbH – Miete", outcome.Entries[1].Description)
	assert.True(t, outcome.Results[0].EntryCreated)
	assert.False(t, outcome.Results[1].EntryCreated)

	// reconciliation without materialization creates nothing
	dryRun := ReconcileRecords(records, roster, false)
	assert.Equal(t, 2, dryRun.MemberMatches)
	assert.Empty(t, dryRun.Entries)
	assert.Equal(t, 0, dryRun.LedgerCreated)
}
