package sepa

import "encoding/xml"

// pain.008.003.02 document tree. Element order matters to bank
// validators, so the struct fields mirror the schema order exactly.

type Document struct {
	XMLName xml.Name   `xml:"Document"`
	Xmlns   string     `xml:"xmlns,attr"`
	Initn   Initiation `xml:"CstmrDrctDbtInitn"`
}

type Initiation struct {
	GroupHeader GroupHeader `xml:"GrpHdr"`
	PaymentInfo PaymentInfo `xml:"PmtInf"`
}

type GroupHeader struct {
	MsgID          string `xml:"MsgId"`
	CreatedAt      string `xml:"CreDtTm"`
	NumberOfTxs    string `xml:"NbOfTxs"`
	ControlSum     string `xml:"CtrlSum"`
	InitiatingName string `xml:"InitgPty>Nm"`
}

type PaymentInfo struct {
	PaymentInfoID   string        `xml:"PmtInfId"`
	PaymentMethod   string        `xml:"PmtMtd"`
	NumberOfTxs     string        `xml:"NbOfTxs"`
	ControlSum      string        `xml:"CtrlSum"`
	PaymentTypeInfo PaymentType   `xml:"PmtTpInf"`
	CollectionDate  string        `xml:"ReqdColltnDt"`
	CreditorName    string        `xml:"Cdtr>Nm"`
	CreditorIBAN    string        `xml:"CdtrAcct>Id>IBAN"`
	CreditorBIC     string        `xml:"CdtrAgt>FinInstnId>BIC"`
	Transactions    []Transaction `xml:"DrctDbtTxInf"`
}

type PaymentType struct {
	ServiceLevel    string `xml:"SvcLvl>Cd"`
	LocalInstrument string `xml:"LclInstrm>Cd"`
	SequenceType    string `xml:"SeqTp"`
}

type Transaction struct {
	EndToEndID     string         `xml:"PmtId>EndToEndId"`
	Amount         InstdAmt       `xml:"InstdAmt"`
	DirectDebit    DirectDebitTx  `xml:"DrctDbtTx"`
	DebtorAgent    DebtorAgent    `xml:"DbtrAgt"`
	DebtorName     string         `xml:"Dbtr>Nm"`
	DebtorIBAN     string         `xml:"DbtrAcct>Id>IBAN"`
	PurposeCode    string         `xml:"Purp>Cd"`
	RemittanceInfo string         `xml:"RmtInf>Ustrd"`
}

type InstdAmt struct {
	Currency string `xml:"Ccy,attr"`
	Value    string `xml:",chardata"`
}

type DirectDebitTx struct {
	MandateID       string `xml:"MndtRltdInf>MndtId"`
	MandateSignedAt string `xml:"MndtRltdInf>DtOfSgntr"`
	CreditorScheme  Scheme `xml:"CdtrSchmeId>Id>PrvtId>Othr"`
}

type Scheme struct {
	ID          string `xml:"Id"`
	SchemeProps string `xml:"SchmeNm>Prtry"`
}

// DebtorAgent carries an intentionally empty Othr element: IBAN-only
// collections within SEPA do not need the debtor's BIC.
type DebtorAgent struct {
	Other struct{} `xml:"FinInstnId>Othr"`
}
