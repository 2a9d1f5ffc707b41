package master

var knownNames = map[Kind]map[string]string{
	KindDepartment: {
		"ADM": "Administration",
		"FIN": "Finance",
		"HR":  "Human Resources",
		"IT":  "Information Technology",
		"MNT": "Maintenance",
		"OPS": "Operations",
		"PRD": "Production",
		"QA":  "Quality Assurance",
		"SAL": "Sales",
		"STR": "Stores",
		"SEC": "Security",
		"LOG": "Logistics",
	},
	KindDesignation: {
		"MGR": "Manager",
		"AMG": "Assistant Manager",
		"SUP": "Supervisor",
		"EXE": "Executive",
		"ENG": "Engineer",
		"OPR": "Operator",
		"TEC": "Technician",
		"HLP": "Helper",
		"TRN": "Trainee",
		"GRD": "Security Guard",
	},
	KindOrgUnit: {
		"HO": "Head Office",
		"U1": "Unit 1",
		"U2": "Unit 2",
		"U3": "Unit 3",
		"WH": "Warehouse",
	},
	KindTimePolicy: {
		"GEN": "General Shift",
		"A":   "Shift A",
		"B":   "Shift B",
		"C":   "Shift C",
		"NGT": "Night Shift",
	},
}
