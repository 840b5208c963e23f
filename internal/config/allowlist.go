package config

// defaultAllowList returns osu! user ids of Korean mappers that are included
// whatever country their profile shows.
func defaultAllowList() []string {
	return []string{
		"16368505", "11602148", "13543418", "16142512", "4115819", "533502", "224280",
		"11171976", "11185275", "165027", "3011818", "8058206", "2688581", "9262355",
		"9892196", "9823042", "9326064", "9555243", "1974436", "4904557", "4643294", "566276",
		"8001433", "1943309", "5413027", "1997633", "3846265", "11103764", "4005683",
		"8946550", "2489741", "7495614", "113646", "707980", "1742622", "917786", "1545563",
		"87546", "2036217", "3626063", "246186", "261694", "43468", "250808", "1629059",
		"2121032", "5591315", "2490770", "739813", "685079", "531253", "197876", "4746949",
		"1634445", "1966909", "2046893", "717228", "4694602", "626873", "3789302", "2043401",
		"3896865", "3984370", "538604", "670365", "873758", "3720242", "412787", "1945351",
		"798743", "70863", "1895984", "6974536", "259972", "759439", "3360737", "120919",
		"1893883", "1204034", "2859670", "1596078", "4647754", "596298", "257977", "747356",
		"1029022", "1574070", "1458069", "114017", "899031", "1380419", "5062061", "2162939",
		"1686145", "194807", "1632431", "1142651", "156215", "2393914", "353453", "9207",
		"3044645", "101399", "87065", "2786984", "6186628", "832084", "4991434", "5379679",
		"6465707", "501", "887358", "111011", "865132", "3087654", "232942", "2353313",
		"1357150", "317802", "323677", "3869951", "11771", "702598", "389236", "2782104",
		"70730", "297086", "1891192", "1399551", "2732340", "1142692", "157400", "3627182",
		"1533796", "5456561", "549766", "685229", "117022", "937761", "7898495", "3021168",
		"1530308", "757783", "4129020", "6336713", "6522146", "980092", "2193723", "3642440",
		"7515767", "1393255", "4485933", "2193444", "4118962", "7342798", "6673830", "4637369",
		"3261991", "659959", "13340203", "9014584", "6363008", "697649", "11443437", "2218047",
		"13924533", "2288943", "14892190",
	}
}
