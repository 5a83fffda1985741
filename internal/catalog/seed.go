package catalog

import "github.com/frsc-ops/edashboard/internal/types"

var seedTeamLeaders = []types.TeamLeader{
	{Name: "RC OS ODEKUNLE", Pin: "C-07287"},
	{Name: "RC CT BOYEDE", Pin: "C-07716"},
	{Name: "DRC TO OKUNOYE", Pin: "C-08653"},
	{Name: "DRC D ADEGOKE", Pin: "C-08925"},
	{Name: "DRC DO OLAGOKE", Pin: "C-09040"},
	{Name: "DRC MO OGUBOWALE", Pin: "C-011416"},
	{Name: "DRC SA ADEBIYI", Pin: "C-09173"},
	{Name: "DRC VO JEGEDE", Pin: "C-09940"},
	{Name: "ARC JT OGUNDELE", Pin: "C-010655"},
	{Name: "ARC MA BADRU", Pin: "C-010690"},
	{Name: "ARC OO OLASANMI", Pin: "C-010823"},
	{Name: "ARC BF OSHODI", Pin: "C-011813"},
	{Name: "ARC AO ADEGUN", Pin: "C-011907"},
	{Name: "ARC BJ OWOEYE", Pin: "C-012236"},
}

var seedRoutes = []string{"OS - SEKONA", "OS - IKIRUN", "OS - IWO/EJIGBO", "OS - ILESA"}

var seedOffences = []types.Offence{
	{Code: "SUV", Name: "SEAT BELT VIOLATION"},
	{Code: "RMH", Name: "RIDING MOTORCYCLE WITHOUT USING CRASH HELMET"},
	{Code: "TYV", Name: "DRIVING WITH WORN-OUT TYRE"},
	{Code: "EWT", Name: "DRIVING WITH EXPIRED/WITHOUT SPARE TYRE"},
	{Code: "OVL", Name: "OVERLOADING"},
	{Code: "ACS", Name: types.TriggeringOffence},
	{Code: "DLV", Name: "DRIVER LICENCE VIOLATION"},
	{Code: "UPD", Name: "USE OF PHONE WHILE DRIVING"},
	{Code: "VLV", Name: "VEHICLE LICENCE VIOLATION"},
	{Code: "VMV", Name: "VEHICLE MIRROR VIOLATION"},
	{Code: "NPV", Name: "VEHICLE NUMBER PLATE VIOLATION"},
	{Code: "VWV", Name: "VEHICLE WINDSHIELD VIOLATION"},
	{Code: "SLD", Name: "FAILURE TO INSTALL SPEED LIMITING"},
	{Code: "FEV", Name: "FIRE EXTINGUISHER VIOLATION"},
	{Code: "LSV", Name: "LIGHT/SIGN VIOLATION"},
	{Code: "DGD", Name: "DANGEROUS DRIVING"},
	{Code: "AWV", Name: "ASCERTAINMENT OF WEIGHT VIOLATION"},
	{Code: "AMD", Name: "ASSAULTING MARSHAL ON DUTY"},
	{Code: "CSV", Name: "CAUTION SIGN VIOLATION"},
	{Code: "CRV", Name: "CHILD RESTRAINT VIOLATION"},
	{Code: "CPV", Name: "CHILD SITTING POSITION VIOLATION"},
	{Code: "DNM", Name: "DO NOT MOVE"},
	{Code: "DRV", Name: "DRIVING RIGHT-HAND STEERING"},
	{Code: "DUI", Name: "DRIVING UNDER ALCOHOL OR DRUG INFLUENCE"},
	{Code: "ESE", Name: "EXCESSIVE SMOKE EMISSION"},
	{Code: "FCM", Name: "FAILURE TO COVER UNSTABLE MATERIALS"},
	{Code: "FFF", Name: "FAILURE TO FIX RED FLAG ON PROJECTED LOAD"},
	{Code: "FMO", Name: "FAILURE TO MOVE OVER"},
	{Code: "OMD", Name: "OBSTRUCTING MARSHAL ON DUTY"},
	{Code: "MDV", Name: "OPERATING MECHANICALLY DEFICIENT VEHICLE"},
	{Code: "OFV", Name: "OTHER OFFENCES/VIOLATION"},
	{Code: "PLE", Name: "PROJECTED LOAD IN EXCESS OF PRESCRIBED LIMIT"},
	{Code: "RTV", Name: "ROUTE VIOLATION"},
	{Code: "SLV", Name: "SPEED LIMIT VIOLATION"},
	{Code: "UDR", Name: "UNDER AGE DRIVING/RIDING"},
	{Code: "WOV", Name: "WRONGFUL OVERTAKING"},
}

var seedCurrencies = []string{"NGN", "USD", "EUR", "GBP"}
