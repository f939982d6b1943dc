package server

import (
	"strings"

	"pogrn/internal/api"
	"pogrn/internal/history"
	"pogrn/internal/models"
)

func toRecordResponse(rec models.PoRecord) api.RecordResponse {
	resp := api.RecordResponse{
		ReceivedDate: models.FormatDate(rec.ReceivedDate),
		PONumber:     rec.PONumber,
		VendorName:   rec.VendorName,
		GRNStatus:    string(rec.GRNStatus),
		POFile:       toAttachmentResponse(rec.POAttachmentRef),
		GRNFile:      toAttachmentResponse(rec.GRNAttachmentRef),
	}
	if len(rec.Extra) > 0 {
		resp.Extra = make(map[string]string, len(rec.Extra))
		for k, v := range rec.Extra {
			resp.Extra[k] = v
		}
	}
	return resp
}

func toRecordResponses(records []models.PoRecord) []api.RecordResponse {
	out := make([]api.RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	return out
}

func toAttachmentResponse(ref *models.AttachmentRef) *api.AttachmentResponse {
	if ref == nil {
		return nil
	}
	return &api.AttachmentResponse{
		Kind:             strings.ToLower(string(ref.Kind)),
		StoragePath:      ref.StoragePath,
		OriginalFilename: ref.OriginalFilename,
	}
}

func toHistoryResponses(events []history.Event) []api.HistoryEventResponse {
	out := make([]api.HistoryEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, api.HistoryEventResponse{
			ID:        ev.ID,
			Type:      string(ev.Type),
			PONumber:  ev.PONumber,
			Detail:    ev.Detail,
			Actor:     ev.Actor,
			CreatedAt: ev.CreatedAt,
		})
	}
	return out
}
