package constants

// ============================================================================
// AUTHENTICATION & SESSION ERRORS
// ============================================================================

const (
	ErrMissingUserID  = "user_id is required in the request"
	ErrInvalidSession = "Your session has expired or is invalid. Please login again"
	ErrUnauthorized   = "You are not authorized to perform this action"
	ErrMethodNotAllowed = "Method Not Allowed"
	ErrInvalidJSON      = "Invalid JSON or missing fields"
)

// ============================================================================
// BANK IMPORT ERRORS
// ============================================================================

const (
	ErrNoFile         = "Keine Datei hochgeladen."
	ErrCSVOnly        = "Nur CSV-Dateien werden unterstützt."
	ErrFileTooLarge   = "Datei zu groß. Maximum: 5 MB"
	ErrUnreadableCSV  = "CSV-Datei konnte nicht gelesen werden."
	ErrNoBookingsInCSV = "Keine Buchungen in der CSV-Datei gefunden."
	ErrInvalidDate     = "Ungültiges Datum."
	ErrInvalidDateISO  = "Ungültiges Datum. Format: YYYY-MM-DD"
)

// ============================================================================
// MEMBER / TRANSACTION ERRORS
// ============================================================================

const (
	ErrMemberNotFound      = "Mitglied nicht gefunden"
	ErrReminderNotFound    = "Erinnerung nicht gefunden"
	ErrTransactionNotFound = "Buchung nicht gefunden"
	ErrCategoryNotFound    = "Kategorie nicht gefunden"
	ErrInvalidTxnType      = "type must be income or expense"
	ErrInvalidAmount       = "Ungültiger Betrag"
	ErrMemberNoEmail       = "Mitglied hat keine E-Mail-Adresse hinterlegt"
)

// ============================================================================
// SEPA ERRORS
// ============================================================================

const (
	ErrNoEligibleMembers = "Keine aktiven Mitglieder mit IBAN und Monatsbeitrag gefunden. " +
		"Bitte hinterlegen Sie IBAN und Beitrag bei den Mitgliedern."
)

// ============================================================================
// DB / SQL ERRORS
// ============================================================================

const (
	ErrDB             = "DB error"
	ErrTxStartFailed  = "failed to start transaction: "
	ErrTxCommitFailed = "failed to commit transaction: "
	ErrQueryFailed    = "query failed: "
)
