package tracker

// FlatRecord is the display row returned by the entries API.
type FlatRecord struct {
	EntryID        int    `json:"EntryID"`
	FirstName      string `json:"FirstName"`
	LastName       string `json:"LastName"`
	WorkTitle      string `json:"WorkTitle"`
	EmployeeID     int    `json:"EmployeeID"`
	EmployeeEmail  string `json:"EmployeeEmail"`
	EntryDateTime  string `json:"EntryDateTime"`
	ImageData      string `json:"ImageData"`
	ImageName      string `json:"ImageName"`
	ImageExtension string `json:"ImageExtension"`
}

// Project maps joined records 1:1 to FlatRecords, reformatting the entry
// time for display.
func Project(joined []JoinedRecord) ([]FlatRecord, error) {
	out := make([]FlatRecord, 0, len(joined))
	for _, rec := range joined {
		when, err := entryTime(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, FlatRecord{
			EntryID:        rec.KeyCardEntry.EntryID,
			FirstName:      rec.Employee.FirstName,
			LastName:       rec.Employee.LastName,
			WorkTitle:      rec.Employee.WorkTitle,
			EmployeeID:     rec.Employee.EmployeeID,
			EmployeeEmail:  rec.Employee.WorkEmail,
			EntryDateTime:  when.Format(displayLayout),
			ImageData:      rec.Image.ImageData,
			ImageName:      rec.Image.ImageName,
			ImageExtension: rec.Image.ImageExtension,
		})
	}
	return out, nil
}
