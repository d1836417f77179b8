package packages

import "packagesync/internal/entities"

type statusRequest struct {
	Status   entities.PackageStatusType `json:"status"`
	Location *entities.Location         `json:"location,omitempty"`
	Notes    *string                    `json:"notes,omitempty"`
}

type batchStatusItem struct {
	ID       string                     `json:"id"`
	Status   entities.PackageStatusType `json:"status"`
	Location *entities.Location         `json:"location,omitempty"`
	Notes    *string                    `json:"notes,omitempty"`
}

type batchStatusRequest struct {
	Updates []batchStatusItem `json:"updates"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func toBatchRequest(updates []entities.StatusUpdate) batchStatusRequest {
	items := make([]batchStatusItem, 0, len(updates))
	for _, u := range updates {
		items = append(items, batchStatusItem{
			ID:       u.ID,
			Status:   u.Status,
			Location: u.Context.Location,
			Notes:    u.Context.Notes,
		})
	}
	return batchStatusRequest{Updates: items}
}
