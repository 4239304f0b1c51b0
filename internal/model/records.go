package model

// Employee is a member of staff as listed by the backend.
type Employee struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Department string `json:"department,omitempty" yaml:"department,omitempty"`
}

// AttendanceRecord is one attendance mark. Date may be any parseable format.
type AttendanceRecord struct {
	EmployeeID string `json:"employee_id" yaml:"employee_id"`
	Date       string `json:"date" yaml:"date"`
	Status     string `json:"status,omitempty" yaml:"status,omitempty"`
}

// LeaveRecord is a leave request. Days, when zero, is derived from the dates.
type LeaveRecord struct {
	EmployeeID string  `json:"employee_id" yaml:"employee_id"`
	StartDate  string  `json:"start_date" yaml:"start_date"`
	EndDate    string  `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Type       string  `json:"type,omitempty" yaml:"type,omitempty"`
	Status     string  `json:"status" yaml:"status"`
	Days       float64 `json:"days,omitempty" yaml:"days,omitempty"`
}

// TaskRecord is a task assigned to an employee.
type TaskRecord struct {
	ID         string `json:"id" yaml:"id"`
	AssigneeID string `json:"assignee_id" yaml:"assignee_id"`
	Title      string `json:"title,omitempty" yaml:"title,omitempty"`
	Status     string `json:"status" yaml:"status"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
}

// Dataset bundles the raw collections a performance report is computed from.
type Dataset struct {
	Employees  []Employee         `json:"employees" yaml:"employees"`
	Attendance []AttendanceRecord `json:"attendance" yaml:"attendance"`
	Leaves     []LeaveRecord      `json:"leaves" yaml:"leaves"`
	Tasks      []TaskRecord       `json:"tasks" yaml:"tasks"`
}

// EmployeeMetrics is the per-employee aggregate shown in the performance view.
type EmployeeMetrics struct {
	EmployeeID            string  `json:"employee_id" yaml:"employee_id"`
	EmployeeName          string  `json:"employee_name" yaml:"employee_name"`
	TotalAttendanceDays   int     `json:"total_attendance_days" yaml:"total_attendance_days"`
	AvgAttendancePerMonth float64 `json:"avg_attendance_per_month" yaml:"avg_attendance_per_month"`
	TotalLeaveDays        float64 `json:"total_leave_days" yaml:"total_leave_days"`
	AvgLeavePerMonth      float64 `json:"avg_leave_per_month" yaml:"avg_leave_per_month"`
	TasksTotal            int     `json:"tasks_total" yaml:"tasks_total"`
	TasksCompleted        int     `json:"tasks_completed" yaml:"tasks_completed"`
	CompletionRate        float64 `json:"completion_rate" yaml:"completion_rate"`
}
