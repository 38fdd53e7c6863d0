package services

import (
	"bytes"
	"fmt"

	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// XLSXContentType is the media type of exported workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportDateLayout formats timestamps in exported sheets
const exportDateLayout = "2006-01-02 15:04"

// writeSheet renames the default sheet and writes a bold header row followed by rows
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle)
	f.SetColWidth(sheet, "A", lastCol, 20)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func workbookBytes(f *excelize.File) (*bytes.Buffer, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// ExportServiceRequests writes the filtered requests to an XLSX workbook, newest first.
// Service titles are rendered in locale.
func ExportServiceRequests(db *gorm.DB, actor *identity.Principal, audit AuditContext, filters RequestFilters, locale string) (*bytes.Buffer, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	var requests []models.ServiceRequest
	err := db.Model(&models.ServiceRequest{}).
		Scopes(requestScope(filters)).
		Preload("Service").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	headers := []string{"ID", "Created", "Name", "Email", "Phone", "Service", "Kind", "Priority", "Status", "Preferred date", "Response date", "Description", "Staff notes"}
	rows := make([][]interface{}, len(requests))
	for i, r := range requests {
		service := ""
		if r.Service != nil {
			service = r.Service.Title(locale)
		}
		preferred, responded, notes := "", "", ""
		if r.PreferredDate != nil {
			preferred = r.PreferredDate.Format(models.PreferredDateLayout)
		}
		if r.ResponseDate != nil {
			responded = r.ResponseDate.Format(exportDateLayout)
		}
		if r.AdminNotes != nil {
			notes = *r.AdminNotes
		}
		rows[i] = []interface{}{
			r.ID, r.CreatedAt.Format(exportDateLayout), r.Name, r.Email, r.Phone, service,
			r.Kind, r.Priority, r.Status, preferred, responded, r.Description, notes,
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := writeSheet(f, "Requests", headers, rows); err != nil {
		return nil, err
	}
	buf, err := workbookBytes(f)
	if err != nil {
		return nil, err
	}

	LogAuditEvent(db, audit, AuditEntry{
		Action:       models.AuditActionExport,
		ResourceType: models.AuditResourceServiceRequest,
		Description:  fmt.Sprintf("Exported %d service requests", len(requests)),
	})
	return buf, nil
}

// ExportContactMessages writes the filtered messages to an XLSX workbook, newest first
func ExportContactMessages(db *gorm.DB, actor *identity.Principal, audit AuditContext, filters MessageFilters) (*bytes.Buffer, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	var messages []models.ContactMessage
	err := db.Model(&models.ContactMessage{}).
		Scopes(messageScope(filters)).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	headers := []string{"ID", "Created", "Name", "Email", "Phone", "Type", "Subject", "Message", "Read", "Replied"}
	rows := make([][]interface{}, len(messages))
	for i, m := range messages {
		rows[i] = []interface{}{
			m.ID, m.CreatedAt.Format(exportDateLayout), m.Name, m.Email, m.Phone,
			m.ContactType, m.Subject, m.Message, yesNo(m.IsRead), yesNo(m.IsReplied),
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := writeSheet(f, "Messages", headers, rows); err != nil {
		return nil, err
	}
	buf, err := workbookBytes(f)
	if err != nil {
		return nil, err
	}

	LogAuditEvent(db, audit, AuditEntry{
		Action:       models.AuditActionExport,
		ResourceType: models.AuditResourceContactMessage,
		Description:  fmt.Sprintf("Exported %d contact messages", len(messages)),
	})
	return buf, nil
}
