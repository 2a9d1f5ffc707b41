package attendance

import "time"

type DecisionResponse struct {
	EmployeeID   string   `json:"employee_id"`
	CardNumber   string   `json:"card_number"`
	EmployeeName string   `json:"employee_name"`
	Date         string   `json:"date"`
	Status       Presence `json:"status"`
	CheckIn      *string  `json:"check_in,omitempty"`
	CheckOut     *string  `json:"check_out,omitempty"`
	Source       Origin   `json:"source"`
}

type Summary struct {
	Total      int `json:"total"`
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	FromLocal  int `json:"from_local"`
	FromRemote int `json:"from_remote"`
}

type DashboardResponse struct {
	Date            string             `json:"date"`
	RemoteAvailable bool               `json:"remote_available"`
	Summary         Summary            `json:"summary"`
	Employees       []DecisionResponse `json:"employees"`
}

func NewDecisionResponse(d Decision) DecisionResponse {
	return DecisionResponse{
		EmployeeID:   d.EmployeeID,
		CardNumber:   d.CardNumber,
		EmployeeName: d.EmployeeName,
		Date:         d.Date.Format("2006-01-02"),
		Status:       d.Status,
		CheckIn:      timePtrToString(d.CheckIn),
		CheckOut:     timePtrToString(d.CheckOut),
		Source:       d.Source,
	}
}

// NewDashboardResponse tallies decisions into a summary.
func NewDashboardResponse(day time.Time, remoteAvailable bool, decisions []Decision) DashboardResponse {
	resp := DashboardResponse{
		Date:            day.Format("2006-01-02"),
		RemoteAvailable: remoteAvailable,
		Employees:       make([]DecisionResponse, 0, len(decisions)),
	}
	for _, d := range decisions {
		resp.Summary.Total++
		if d.Status == Present {
			resp.Summary.Present++
		} else {
			resp.Summary.Absent++
		}
		switch d.Source {
		case OriginLocal:
			resp.Summary.FromLocal++
		case OriginRemote:
			resp.Summary.FromRemote++
		}
		resp.Employees = append(resp.Employees, NewDecisionResponse(d))
	}
	return resp
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}
