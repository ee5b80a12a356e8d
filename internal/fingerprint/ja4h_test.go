package fingerprint

import "testing"

func TestComputeJA4H_CNNFixture(t *testing.T) {
	in := HTTPInput{
		Method:  "GET",
		Version: "1.1",
		Headers: []HeaderField{
			{"Host", "www.cnn.com"},
			{"Cookie", "FastAB=0=6859,1=8174,2=4183,3=3319,4=3917,5=2557,6=4259,7=6070,8=0804,9=6453,10=1942,11=4435,12=4143,13=9445,14=6957,15=8682,16=1885,17=1825,18=3760,19=0929; sato=1; countryCode=US; stateCode=VA; geoData=purcellville|VA|20132|US|NA|-400|broadband|39.160|-77.700|511; usprivacy=1---; umto=1; _dd_s=logs=1&id=b5c2d770-eaba-4847-8202-390c4552ff9a&created=1686159462724&expire=1686160422726"},
			{"Sec-Ch-Ua", ""},
			{"Sec-Ch-Ua-Mobile", "?0"},
			{"User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.5735.110 Safari/537.36"},
			{"Sec-Ch-Ua-Platform", `""`},
			{"Accept", "*/*"},
			{"Sec-Fetch-Site", "same-origin"},
			{"Sec-Fetch-Mode", "cors"},
			{"Sec-Fetch-Dest", "empty"},
			{"Referer", "https://www.cnn.com/"},
			{"Accept-Encoding", "gzip, deflate"},
			{"Accept-Language", "en-US,en;q=0.9"},
		},
	}

	j, err := ComputeJA4H(in)
	if err != nil {
		t.Fatalf("ComputeJA4H error: %v", err)
	}

	wantDebug := "ge11cr11enus_Host,Sec-Ch-Ua,Sec-Ch-Ua-Mobile,User-Agent,Sec-Ch-Ua-Platform,Accept,Sec-Fetch-Site,Sec-Fetch-Mode,Sec-Fetch-Dest,Accept-Encoding,Accept-Language_FastAB,_dd_s,countryCode,geoData,sato,stateCode,umto,usprivacy_FastAB=0=6859,1=8174,2=4183,3=3319,4=3917,5=2557,6=4259,7=6070,8=0804,9=6453,10=1942,11=4435,12=4143,13=9445,14=6957,15=8682,16=1885,17=1825,18=3760,19=0929,_dd_s=logs=1&id=b5c2d770-eaba-4847-8202-390c4552ff9a&created=1686159462724&expire=1686160422726,countryCode=US,geoData=purcellville|VA|20132|US|NA|-400|broadband|39.160|-77.700|511,sato=1,stateCode=VA,umto=1,usprivacy=1---"
	if got := j.ToHumanString(); got != wantDebug {
		t.Errorf("ToHumanString() =\n%q\nwant\n%q", got, wantDebug)
	}

	wantHash := "ge11cr11enus_974ebe531c03_0f2659b474bf_161698816dab"
	if got := j.String(); got != wantHash {
		t.Errorf("String() = %q, want %q", got, wantHash)
	}
}

func TestJA4H_CacheKey_StableAndDistinct(t *testing.T) {
	a, err := ComputeJA4H(HTTPInput{Method: "GET", Version: "1.1", Headers: []HeaderField{{"Accept", "*/*"}}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeJA4H(HTTPInput{Method: "POST", Version: "1.1", Headers: []HeaderField{{"Accept", "*/*"}}})
	if err != nil {
		t.Fatal(err)
	}

	if a.CacheKey() != a.CacheKey() {
		t.Error("CacheKey should be stable across repeated calls")
	}
	if a.CacheKey() == b.CacheKey() {
		t.Error("distinct fingerprints should not collide")
	}
}

func TestComputeJA4H_NoHeadersErrors(t *testing.T) {
	if _, err := ComputeJA4H(HTTPInput{Method: "GET", Version: "1.1"}); err == nil {
		t.Error("expected error for a request with no fingerprintable headers")
	}
}

func TestComputeJA4H_UnknownVersionErrors(t *testing.T) {
	in := HTTPInput{Method: "GET", Version: "0.9", Headers: []HeaderField{{"Host", "x"}}}
	if _, err := ComputeJA4H(in); err == nil {
		t.Error("expected error for unrecognised HTTP version")
	}
}

func TestJA4HLanguageField_PaddingAndTruncation(t *testing.T) {
	if got := ja4hLanguageField("en-US,en;q=0.9"); got != "enus" {
		t.Errorf("got %q, want enus", got)
	}
	if got := ja4hLanguageField(""); got != "0000" {
		t.Errorf("got %q, want 0000", got)
	}
}
