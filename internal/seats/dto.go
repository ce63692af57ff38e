package seats

type ReserveSeatRequest struct {
	SeatLabel string `json:"seat_label" binding:"required,max=20"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	TimeSlot  string `json:"time_slot" binding:"required,timeslot"`
}

type CancelSeatRequest struct {
	SeatLabel string `json:"seat_label" binding:"required,max=20"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	TimeSlot  string `json:"time_slot" binding:"required,timeslot"`
}

type OccupiedQuery struct {
	Date     string `form:"date" binding:"required,datetime=2006-01-02"`
	TimeSlot string `form:"time_slot" binding:"required,timeslot"`
}

type OccupiedResponse struct {
	Date     string   `json:"date"`
	TimeSlot TimeSlot `json:"time_slot"`
	Labels   []string `json:"labels"`
}
